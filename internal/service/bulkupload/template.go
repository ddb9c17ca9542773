package bulkupload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fisker/nexforms-backend/pkg/logger"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 模板和导出共用的行布局：第 1 行标题、第 2 行说明、第 3 行表头，数据从第 4 行起
const (
	templateStartRow = 4
	templateNumRows  = 100
)

var widthOptions = []string{
	"25% (1/4)",
	"33% (1/3)",
	"50% (1/2)",
	"66% (2/3)",
	"75% (3/4)",
	"100% (Full)",
}

var formsHeaders = []string{"Form Title", "Form Type", "Description", "Is Completed"}

var templateSectionsHeaders = []string{
	"Form Title", "Section Name", "Section Description", "Section Order",
	"Dependency Section", "Dependency Field", "Dependency Option", "Dependency (JSON)",
}

var templateFieldsHeaders = []string{
	"Form Title", "Section Name", "Field Label",
	"Field Type", "Data Type", "Required", "Field Order",
	"Width", "Options", "Validation", "Parent Field",
	"Field Dep Section", "Field Dep Field", "Field Dep Option",
	"Dependency", "Additional Info",
}

// 各数据类型校验键的说明与示例，写入 Validation Rules 参考表
var validationDescriptions = map[string]string{
	"text":       "minLength: min chars, maxLength: max chars, pattern: regex",
	"textarea":   "minLength: min chars, maxLength: max chars, pattern: regex",
	"number":     "min: min value, max: max value, isInteger: true/false, isPositive: true/false",
	"date":       "minDate: YYYY-MM-DD, maxDate: YYYY-MM-DD",
	"date_range": "startDateBeforeOrEqualEndDate: true/false",
	"time":       "minTime: HH:MM, maxTime: HH:MM",
	"time_range": "startTimeBeforeOrEqualEndTime: true/false",
	"select":     "minSelection: min items, maxSelection: max items, isMultiple: true/false",
	"checkbox":   "minSelection: min items, maxSelection: max items, isMultiple: true/false",
	"file":       "fileType: extensions, maxFileSize: MB, isMultiple: true/false",
	"image":      "maxFileSize: MB, resolution: WxH, aspectRatio: W:H, isMultiple: true/false",
	"password":   "minLength: min chars, maxLength: max chars, containsSpecialChar: true/false, strengthCheck: true/false",
	"range":      "min: min value, max: max value, step: increment",
	"signature":  "maxSize: KB, maxDimensions: WxH",
	"richtext":   "minContentLength: min chars, maxContentLength: max chars, disallowedTags: array",
}

var validationExamples = map[string]string{
	"text":       `{"minLength": 5, "maxLength": 100}`,
	"textarea":   `{"minLength": 10, "maxLength": 500}`,
	"number":     `{"min": 0, "max": 100, "isInteger": true}`,
	"date":       `{"minDate": "2024-01-01", "maxDate": "2025-12-31"}`,
	"date_range": `{"startDateBeforeOrEqualEndDate": true}`,
	"time":       `{"minTime": "09:00", "maxTime": "18:00"}`,
	"time_range": `{"startTimeBeforeOrEqualEndTime": true}`,
	"select":     `{"isMultiple": true, "minSelection": 1, "maxSelection": 3}`,
	"checkbox":   `{"isMultiple": true, "maxSelection": 5}`,
	"file":       `{"fileType": ".pdf,.doc", "maxFileSize": 10, "isMultiple": false}`,
	"image":      `{"maxFileSize": 5, "isMultiple": true}`,
	"password":   `{"minLength": 8, "containsSpecialChar": true}`,
	"range":      `{"min": 0, "max": 100, "step": 5}`,
	"signature":  `{"maxSize": 500}`,
	"richtext":   `{"maxContentLength": 5000}`,
}

// sheetStyles 每个工作簿内复用的样式 ID
type sheetStyles struct {
	title     int
	note      int
	header    int
	duplicate int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	title, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	note, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 10, Italic: true, Color: "FF0000"},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "000000"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	duplicate, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	return &sheetStyles{title: title, note: note, header: header, duplicate: duplicate}, nil
}

// writeSheetHeader 写入标题行、说明行和表头行
func writeSheetHeader(f *excelize.File, sheet, title, note string, headers []string, styles *sheetStyles) error {
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", title)
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.title)

	if err := f.MergeCell(sheet, "A2", lastCol+"2"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A2", note)
	f.SetCellStyle(sheet, "A2", lastCol+"2", styles.note)

	for i, header := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, col+"3", header)
	}
	f.SetCellStyle(sheet, "A3", lastCol+"3", styles.header)
	return nil
}

func setColWidths(f *excelize.File, sheet string, widths []float64) {
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}
}

func headerIndex(headers []string, name string) string {
	for i, h := range headers {
		if h == name {
			col, _ := excelize.ColumnNumberToName(i + 1)
			return col
		}
	}
	return "A"
}

// addDropList 给某列加下拉数据校验
func addDropList(f *excelize.File, sheet, col, formula string, allowBlank bool) error {
	dv := excelize.NewDataValidation(allowBlank)
	dv.Sqref = fmt.Sprintf("%s%d:%s%d", col, templateStartRow, col, templateStartRow+templateNumRows)
	dv.SetSqrefDropList(formula)
	return f.AddDataValidation(sheet, dv)
}

// addDropListWithError 带错误提示的下拉校验
func addDropListWithError(f *excelize.File, sheet, col, formula, errTitle, errMsg string) error {
	dv := excelize.NewDataValidation(false)
	dv.Sqref = fmt.Sprintf("%s%d:%s%d", col, templateStartRow, col, templateStartRow+templateNumRows)
	dv.SetSqrefDropList(formula)
	dv.SetError(excelize.DataValidationErrorStyleStop, errTitle, errMsg)
	return f.AddDataValidation(sheet, dv)
}

// writeReferencesSheet 写入隐藏的下拉数据源表
func writeReferencesSheet(f *excelize.File, formTypes, fieldTypes, dataTypes []string, boolHeader string) error {
	if _, err := f.NewSheet(SheetReferences); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(SheetReferences, "A1", "Form Types")
	for i, name := range formTypes {
		f.SetCellValue(SheetReferences, fmt.Sprintf("A%d", i+2), name)
	}

	f.SetCellValue(SheetReferences, "B1", "Field Types")
	for i, name := range fieldTypes {
		f.SetCellValue(SheetReferences, fmt.Sprintf("B%d", i+2), name)
	}

	f.SetCellValue(SheetReferences, "C1", "Data Types")
	for i, name := range dataTypes {
		f.SetCellValue(SheetReferences, fmt.Sprintf("C%d", i+2), name)
	}

	f.SetCellValue(SheetReferences, "D1", boolHeader)
	f.SetCellValue(SheetReferences, "D2", "TRUE")
	f.SetCellValue(SheetReferences, "D3", "FALSE")

	f.SetCellValue(SheetReferences, "E1", "Width")
	for i, width := range widthOptions {
		f.SetCellValue(SheetReferences, fmt.Sprintf("E%d", i+2), width)
	}

	f.SetCellStyle(SheetReferences, "A1", "E1", bold)
	return f.SetSheetVisible(SheetReferences, false)
}

// GenerateTemplate 生成批量导入模板，含表单/章节/字段三张录入表、
// 校验规则参考表和隐藏的下拉数据源表
func (s *Service) GenerateTemplate() ([]byte, error) {
	formTypeMap, err := s.formTypeRepo.ActiveNameMap()
	if err != nil {
		return nil, err
	}
	formTypes := sortedKeys(formTypeMap)

	fieldTypeMap, err := s.fieldTypeRepo.FieldTypeDataTypeMap()
	if err != nil {
		return nil, err
	}
	fieldTypes := sortedKeys(fieldTypeMap)

	dataTypeModels, err := s.fieldTypeRepo.ListDataTypes()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	// Sheet 1: Forms
	f.SetSheetName("Sheet1", SheetForms)
	if err := writeSheetHeader(f, SheetForms,
		"Bulk Upload Forms - Form Metadata",
		"NOTE: Do not modify header names. Select Form Type from dropdown. Form Title must be unique.",
		formsHeaders, styles); err != nil {
		return nil, err
	}
	setColWidths(f, SheetForms, []float64{30, 25, 40, 15})

	// 重复标题高亮
	dupFormat := styles.duplicate
	if err := f.SetConditionalFormat(SheetForms, "A4:A103", []excelize.ConditionalFormatOptions{
		{Type: "duplicate", Criteria: "=", Format: &dupFormat},
	}); err != nil {
		return nil, err
	}

	// Sheet 2: Sections
	if _, err := f.NewSheet(SheetSections); err != nil {
		return nil, err
	}
	if err := writeSheetHeader(f, SheetSections,
		"Bulk Upload Forms - Sections",
		"NOTE: Select Form Title from dropdown. Section Order must be unique within each form. "+
			"For simple dependencies, use the three dependency columns (Section, Field, Option) instead of the JSON Dependency column.",
		templateSectionsHeaders, styles); err != nil {
		return nil, err
	}
	setColWidths(f, SheetSections, []float64{30, 30, 40, 15, 25, 25, 25, 30})

	// Sheet 3: Fields
	if _, err := f.NewSheet(SheetFields); err != nil {
		return nil, err
	}
	if err := writeSheetHeader(f, SheetFields,
		"Bulk Upload Forms - Fields",
		"NOTE: Select Form Title, Section Name, Field Type, Data Type, and Width from dropdowns. "+
			`Options format: ["Option1","Option2"]. `+
			"For field dependency, use the three columns (Field Dep Section/Field/Option) or JSON Dependency column.",
		templateFieldsHeaders, styles); err != nil {
		return nil, err
	}
	setColWidths(f, SheetFields, []float64{30, 25, 25, 20, 20, 12, 12, 15, 30, 40, 25, 20, 20, 20, 35, 30})

	// Sheet 4: Validation Rules（用户可见的参考表）
	if _, err := f.NewSheet(SheetValidation); err != nil {
		return nil, err
	}
	if err := writeSheetHeader(f, SheetValidation,
		"Validation Rules by Data Type",
		"Use the validation keys below in JSON format in the Validation column. "+
			`Example: {"minLength": 5, "maxLength": 100}`,
		[]string{"Data Type", "Validation Keys", "Description", "Example"}, styles); err != nil {
		return nil, err
	}
	setColWidths(f, SheetValidation, []float64{15, 50, 60, 50})

	rowNum := templateStartRow
	dataTypes := make([]string, 0, len(dataTypeModels))
	for _, dt := range dataTypeModels {
		dataTypes = append(dataTypes, dt.Name)

		keys := "None"
		var rules []string
		if len(dt.ValidationRules) > 0 && json.Unmarshal(dt.ValidationRules, &rules) == nil && len(rules) > 0 {
			keys = strings.Join(rules, ", ")
		}

		f.SetCellValue(SheetValidation, fmt.Sprintf("A%d", rowNum), dt.Name)
		f.SetCellValue(SheetValidation, fmt.Sprintf("B%d", rowNum), keys)
		f.SetCellValue(SheetValidation, fmt.Sprintf("C%d", rowNum), validationDescriptions[dt.Name])
		f.SetCellValue(SheetValidation, fmt.Sprintf("D%d", rowNum), validationExamples[dt.Name])
		rowNum++
	}
	sort.Strings(dataTypes)

	// Sheet 5: References（隐藏）
	if err := writeReferencesSheet(f, formTypes, fieldTypes, dataTypes, "Boolean"); err != nil {
		return nil, err
	}

	// 下拉校验
	if len(formTypes) > 0 {
		formula := fmt.Sprintf("References!$A$2:$A$%d", len(formTypes)+1)
		if err := addDropList(f, SheetForms, headerIndex(formsHeaders, "Form Type"), formula, false); err != nil {
			return nil, err
		}
	}
	if err := addDropList(f, SheetForms, headerIndex(formsHeaders, "Is Completed"), "References!$D$2:$D$3", true); err != nil {
		return nil, err
	}

	if err := addDropListWithError(f, SheetSections, headerIndex(templateSectionsHeaders, "Form Title"),
		"OFFSET(Forms!$A$4,0,0,COUNTA(Forms!$A$4:$A$103),1)",
		"Invalid Form Title", "Please select a Form Title from the Forms sheet"); err != nil {
		return nil, err
	}

	if err := addDropListWithError(f, SheetFields, headerIndex(templateFieldsHeaders, "Form Title"),
		"OFFSET(Forms!$A$4,0,0,COUNTA(Forms!$A$4:$A$103),1)",
		"Invalid Form Title", "Please select a Form Title from the Forms sheet"); err != nil {
		return nil, err
	}
	if err := addDropListWithError(f, SheetFields, headerIndex(templateFieldsHeaders, "Section Name"),
		"OFFSET(Sections!$B$4,0,0,COUNTA(Sections!$B$4:$B$103),1)",
		"Invalid Section Name", "Please select a Section Name from the Sections sheet"); err != nil {
		return nil, err
	}
	if len(fieldTypes) > 0 {
		formula := fmt.Sprintf("References!$B$2:$B$%d", len(fieldTypes)+1)
		if err := addDropList(f, SheetFields, headerIndex(templateFieldsHeaders, "Field Type"), formula, false); err != nil {
			return nil, err
		}
	}
	if len(dataTypes) > 0 {
		formula := fmt.Sprintf("References!$C$2:$C$%d", len(dataTypes)+1)
		if err := addDropList(f, SheetFields, headerIndex(templateFieldsHeaders, "Data Type"), formula, false); err != nil {
			return nil, err
		}
	}
	if err := addDropList(f, SheetFields, headerIndex(templateFieldsHeaders, "Required"), "References!$D$2:$D$3", true); err != nil {
		return nil, err
	}
	if err := addDropList(f, SheetFields, headerIndex(templateFieldsHeaders, "Width"), "References!$E$2:$E$7", true); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	logger.Sugar.Infof("批量导入模板已生成, 表单类型 %d 个, 字段类型 %d 个", len(formTypes), len(fieldTypes))
	return buf.Bytes(), nil
}
