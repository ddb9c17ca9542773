package bulkupload

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row 一行数据，键为内部字段名
type Row map[string]string

// Get 取某列的裁剪后的值
func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Has 某列是否有非空值
func (r Row) Has(key string) bool {
	return r.Get(key) != ""
}

// ParsedData 三张工作表解析后的数据
type ParsedData struct {
	Forms    []Row
	Sections []Row
	Fields   []Row
}

// ParseWorkbook 解析上传的 Excel 文件
// 第 1 行为标题、第 2 行为说明、第 3 行为表头，数据从第 4 行开始；
// Forms 表必须存在，Sections / Fields 表可选
func ParseWorkbook(r io.Reader) (*ParsedData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read Excel file: %w", err)
	}
	defer f.Close()

	result := &ParsedData{}

	sheets := f.GetSheetList()
	hasSheet := func(name string) bool {
		for _, s := range sheets {
			if s == name {
				return true
			}
		}
		return false
	}

	if !hasSheet(SheetForms) {
		return nil, fmt.Errorf("required sheet '%s' not found in Excel file", SheetForms)
	}

	if result.Forms, err = parseSheet(f, SheetForms); err != nil {
		return nil, err
	}
	if hasSheet(SheetSections) {
		if result.Sections, err = parseSheet(f, SheetSections); err != nil {
			return nil, err
		}
	}
	if hasSheet(SheetFields) {
		if result.Fields, err = parseSheet(f, SheetFields); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// parseSheet 解析单个工作表，跳过全空行
func parseSheet(f *excelize.File, sheetName string) ([]Row, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheetName, err)
	}
	if len(rows) < 3 {
		return nil, nil
	}

	// 第 3 行为表头，规范化为内部字段名
	header := make([]string, len(rows[2]))
	for i, col := range rows[2] {
		header[i] = NormalizeColumn(strings.TrimSpace(col))
	}

	var result []Row
	for _, cells := range rows[3:] {
		empty := true
		for _, cell := range cells {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		row := make(Row, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(cells) {
				row[key] = cells[i]
			} else {
				row[key] = ""
			}
		}
		result = append(result, row)
	}

	return result, nil
}
