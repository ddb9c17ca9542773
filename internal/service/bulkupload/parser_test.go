package bulkupload

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildTestWorkbook 构造与模板同构的工作簿：
// 第 1 行标题、第 2 行说明、第 3 行表头，数据从第 4 行开始
func buildTestWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			f.SetSheetName("Sheet1", name)
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("failed to create sheet %s: %v", name, err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("failed to write row: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

// TestParseWorkbook 测试工作簿解析和表头规范化
func TestParseWorkbook(t *testing.T) {
	r := buildTestWorkbook(t, map[string][][]interface{}{
		SheetForms: {
			{"Bulk Upload Forms - Form Metadata"},
			{"NOTE: Do not modify header names."},
			{"Form Title", "Form Type", "Description", "Is Completed"},
			{"Safety Audit", "Audit", "Monthly safety walk", "TRUE"},
			{"", "", "", ""}, // 全空行应跳过
			{"Equipment Check", "Checklist", "", "FALSE"},
		},
		SheetSections: {
			{"Bulk Upload Forms - Sections"},
			{"NOTE: Select Form Title from dropdown."},
			{"Form Title", "Section Name", "Section Description", "Section Order"},
			{"Safety Audit", "General", "", "1"},
		},
	})

	data, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}

	if len(data.Forms) != 2 {
		t.Fatalf("expected 2 form rows (empty row skipped), got %d", len(data.Forms))
	}
	if got := data.Forms[0].Get("form_title"); got != "Safety Audit" {
		t.Errorf("form_title = %q, expected Safety Audit", got)
	}
	if got := data.Forms[0].Get("is_completed"); got != "TRUE" {
		t.Errorf("is_completed = %q, expected TRUE", got)
	}

	if len(data.Sections) != 1 {
		t.Fatalf("expected 1 section row, got %d", len(data.Sections))
	}
	if got := data.Sections[0].Get("section_order"); got != "1" {
		t.Errorf("section_order = %q, expected 1", got)
	}

	// Fields 表缺失时为空，不报错
	if len(data.Fields) != 0 {
		t.Errorf("expected no field rows, got %d", len(data.Fields))
	}
}

// TestParseWorkbookMissingFormsSheet Forms 表缺失应报错
func TestParseWorkbookMissingFormsSheet(t *testing.T) {
	r := buildTestWorkbook(t, map[string][][]interface{}{
		SheetSections: {
			{"Bulk Upload Forms - Sections"},
			{"NOTE"},
			{"Form Title", "Section Name", "Section Order"},
		},
	})

	if _, err := ParseWorkbook(r); err == nil {
		t.Fatalf("expected error for missing Forms sheet")
	}
}

// TestParseWorkbookNotExcel 非 Excel 内容应报错
func TestParseWorkbookNotExcel(t *testing.T) {
	if _, err := ParseWorkbook(bytes.NewReader([]byte("plain text, not a workbook"))); err == nil {
		t.Fatalf("expected error for invalid file")
	}
}

// TestRowGetHas 测试行访问辅助方法
func TestRowGetHas(t *testing.T) {
	row := Row{"form_title": "  Audit  ", "description": "   "}

	if got := row.Get("form_title"); got != "Audit" {
		t.Errorf("Get should trim spaces, got %q", got)
	}
	if row.Has("description") {
		t.Errorf("Has should be false for whitespace-only value")
	}
	if row.Has("missing") {
		t.Errorf("Has should be false for missing key")
	}
	if !row.Has("form_title") {
		t.Errorf("Has should be true for non-empty value")
	}
}
