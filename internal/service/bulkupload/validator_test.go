package bulkupload

import (
	"testing"
)

func testLookups() *Lookups {
	return &Lookups{
		FormTypes:  []string{"Audit", "Checklist"},
		FieldTypes: []string{"Short Text", "Dropdown"},
		DataTypes:  []string{"text", "select"},
		FieldTypeDataType: map[string]string{
			"Short Text": "text",
			"Dropdown":   "select",
		},
		ExistingFormTitles: map[string]bool{"existing form": true},
	}
}

func findError(errors []ValidationError, sheet, errType string) *ValidationError {
	for i := range errors {
		if errors[i].Sheet == sheet && errors[i].Type == errType {
			return &errors[i]
		}
	}
	return nil
}

// TestValidateFormsSheet 测试 Forms 表校验
func TestValidateFormsSheet(t *testing.T) {
	tests := []struct {
		name        string
		forms       []Row
		expectSheet string
		expectType  string
	}{
		{
			name:        "缺失必填列",
			forms:       []Row{{"form_title": "", "form_type": "Audit"}},
			expectSheet: SheetForms,
			expectType:  ErrTypeMissingData,
		},
		{
			name:        "无效表单类型",
			forms:       []Row{{"form_title": "F1", "form_type": "Bogus"}},
			expectSheet: SheetForms,
			expectType:  ErrTypeInvalidDropdown,
		},
		{
			name: "文件内标题重复（忽略大小写）",
			forms: []Row{
				{"form_title": "Safety Check", "form_type": "Audit"},
				{"form_title": "SAFETY CHECK", "form_type": "Audit"},
			},
			expectSheet: SheetForms,
			expectType:  ErrTypeDuplicateFile,
		},
		{
			name:        "库内标题重复",
			forms:       []Row{{"form_title": "Existing Form", "form_type": "Audit"}},
			expectSheet: SheetForms,
			expectType:  ErrTypeDuplicateEntry,
		},
		{
			name:        "is_completed非法布尔",
			forms:       []Row{{"form_title": "F1", "form_type": "Audit", "is_completed": "maybe"}},
			expectSheet: SheetForms,
			expectType:  ErrTypeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateAllSheets(&ParsedData{Forms: tt.forms}, testLookups())
			if findError(errors, tt.expectSheet, tt.expectType) == nil {
				t.Errorf("expected %s error in %s sheet, got %+v", tt.expectType, tt.expectSheet, errors)
			}
		})
	}
}

// TestValidateFormsSheetValid 合法数据不应产生错误
func TestValidateFormsSheetValid(t *testing.T) {
	data := &ParsedData{
		Forms: []Row{
			{"form_title": "Monthly Audit", "form_type": "audit", "is_completed": "TRUE"},
		},
	}
	errors := ValidateAllSheets(data, testLookups())
	if len(errors) != 0 {
		t.Errorf("expected no errors, got %+v", errors)
	}
}

// TestValidateSectionsSheet 测试 Sections 表校验
func TestValidateSectionsSheet(t *testing.T) {
	forms := []Row{{"form_title": "F1", "form_type": "Audit"}}

	tests := []struct {
		name       string
		sections   []Row
		expectType string
	}{
		{
			name:       "引用不存在的表单",
			sections:   []Row{{"form_title": "Ghost", "section_name": "S1", "section_order": "1"}},
			expectType: ErrTypeInvalidRef,
		},
		{
			name:       "序号非整数",
			sections:   []Row{{"form_title": "F1", "section_name": "S1", "section_order": "abc"}},
			expectType: ErrTypeInvalidFormat,
		},
		{
			name:       "序号非正数",
			sections:   []Row{{"form_title": "F1", "section_name": "S1", "section_order": "0"}},
			expectType: ErrTypeInvalidFormat,
		},
		{
			name: "章节名重复",
			sections: []Row{
				{"form_title": "F1", "section_name": "General", "section_order": "1"},
				{"form_title": "F1", "section_name": "general", "section_order": "2"},
			},
			expectType: ErrTypeDuplicateFile,
		},
		{
			name: "章节序号重复",
			sections: []Row{
				{"form_title": "F1", "section_name": "A", "section_order": "1"},
				{"form_title": "F1", "section_name": "B", "section_order": "1"},
			},
			expectType: ErrTypeDuplicateFile,
		},
		{
			name:       "简单依赖三列不完整",
			sections:   []Row{{"form_title": "F1", "section_name": "S1", "section_order": "1", "dependency_section": "Other"}},
			expectType: ErrTypeMissingData,
		},
		{
			name:       "JSON依赖格式错误",
			sections:   []Row{{"form_title": "F1", "section_name": "S1", "section_order": "1", "dependency": "{bad json"}},
			expectType: ErrTypeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateAllSheets(&ParsedData{Forms: forms, Sections: tt.sections}, testLookups())
			if findError(errors, SheetSections, tt.expectType) == nil {
				t.Errorf("expected %s error in %s sheet, got %+v", tt.expectType, SheetSections, errors)
			}
		})
	}
}

// TestValidateSectionDependencyReferences 测试章节依赖的跨表引用
func TestValidateSectionDependencyReferences(t *testing.T) {
	forms := []Row{{"form_title": "F1", "form_type": "Audit"}}
	sections := []Row{
		{"form_title": "F1", "section_name": "Basic", "section_order": "1"},
		{
			"form_title": "F1", "section_name": "Details", "section_order": "2",
			"dependency_section": "Basic", "dependency_field": "Mode", "dependency_option": "Advanced",
		},
	}
	fields := []Row{
		{
			"form_title": "F1", "section_name": "Basic", "field_label": "Mode",
			"field_type": "Dropdown", "data_type": "select", "field_order": "1",
			"options": `["Simple","Advanced"]`,
		},
	}

	errors := ValidateAllSheets(&ParsedData{Forms: forms, Sections: sections, Fields: fields}, testLookups())
	if len(errors) != 0 {
		t.Errorf("valid dependency should pass, got %+v", errors)
	}

	// 依赖选项不在字段选项中
	sections[1]["dependency_option"] = "Nonexistent"
	errors = ValidateAllSheets(&ParsedData{Forms: forms, Sections: sections, Fields: fields}, testLookups())
	e := findError(errors, SheetSections, ErrTypeInvalidRef)
	if e == nil || e.Column != "Dependency Option" {
		t.Errorf("expected Dependency Option reference error, got %+v", errors)
	}

	// 依赖字段不存在
	sections[1]["dependency_option"] = "Advanced"
	sections[1]["dependency_field"] = "Ghost Field"
	errors = ValidateAllSheets(&ParsedData{Forms: forms, Sections: sections, Fields: fields}, testLookups())
	e = findError(errors, SheetSections, ErrTypeInvalidRef)
	if e == nil || e.Column != "Dependency Field" {
		t.Errorf("expected Dependency Field reference error, got %+v", errors)
	}
}

// TestValidateFieldsSheet 测试 Fields 表校验
func TestValidateFieldsSheet(t *testing.T) {
	forms := []Row{{"form_title": "F1", "form_type": "Audit"}}
	sections := []Row{{"form_title": "F1", "section_name": "S1", "section_order": "1"}}

	baseField := func(overrides Row) Row {
		row := Row{
			"form_title": "F1", "section_name": "S1", "field_label": "Name",
			"field_type": "Short Text", "data_type": "text", "field_order": "1",
		}
		for k, v := range overrides {
			row[k] = v
		}
		return row
	}

	tests := []struct {
		name       string
		fields     []Row
		expectType string
		column     string
	}{
		{
			name:       "无效字段类型",
			fields:     []Row{baseField(Row{"field_type": "Bogus"})},
			expectType: ErrTypeInvalidDropdown,
			column:     "Field Type",
		},
		{
			name:       "无效数据类型",
			fields:     []Row{baseField(Row{"data_type": "bogus"})},
			expectType: ErrTypeInvalidDropdown,
			column:     "Data Type",
		},
		{
			name:       "字段类型与数据类型不兼容",
			fields:     []Row{baseField(Row{"data_type": "select"})},
			expectType: ErrTypeIncompatible,
			column:     "Data Type",
		},
		{
			name:       "引用不存在的章节",
			fields:     []Row{baseField(Row{"section_name": "Ghost"})},
			expectType: ErrTypeInvalidRef,
			column:     "Section Name",
		},
		{
			name: "字段标签重复",
			fields: []Row{
				baseField(Row{}),
				baseField(Row{"field_order": "2"}),
			},
			expectType: ErrTypeDuplicateFile,
			column:     "Field Label",
		},
		{
			name: "字段序号重复",
			fields: []Row{
				baseField(Row{}),
				baseField(Row{"field_label": "Other"}),
			},
			expectType: ErrTypeDuplicateFile,
			column:     "Field Order",
		},
		{
			name:       "Options非法JSON",
			fields:     []Row{baseField(Row{"options": "[unterminated"})},
			expectType: ErrTypeInvalidFormat,
			column:     "Options",
		},
		{
			name:       "required非法布尔",
			fields:     []Row{baseField(Row{"required": "kinda"})},
			expectType: ErrTypeInvalidFormat,
			column:     "Required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateAllSheets(&ParsedData{Forms: forms, Sections: sections, Fields: tt.fields}, testLookups())
			e := findError(errors, SheetFields, tt.expectType)
			if e == nil {
				t.Fatalf("expected %s error in %s sheet, got %+v", tt.expectType, SheetFields, errors)
			}
			if tt.column != "" && e.Column != tt.column {
				t.Errorf("expected error column %q, got %q", tt.column, e.Column)
			}
		})
	}
}

// TestValidationErrorRowNumbers 错误行号应指向工作表中的实际行（数据从第 4 行起）
func TestValidationErrorRowNumbers(t *testing.T) {
	data := &ParsedData{
		Forms: []Row{
			{"form_title": "F1", "form_type": "Audit"},
			{"form_title": "F2", "form_type": "Bogus"},
		},
	}
	errors := ValidateAllSheets(data, testLookups())
	e := findError(errors, SheetForms, ErrTypeInvalidDropdown)
	if e == nil {
		t.Fatalf("expected dropdown error, got %+v", errors)
	}
	if e.Row != 5 {
		t.Errorf("expected error at row 5 (second data row), got %d", e.Row)
	}
}

// TestValidateAllSheetsCollectsEveryError 多个独立错误应全部收集，
// 不因首个错误中断，且按 Forms、Sections、Fields 表序及行号排列
func TestValidateAllSheetsCollectsEveryError(t *testing.T) {
	data := &ParsedData{
		Forms: []Row{
			// 行 4：类型无效 + is_completed 非法布尔
			{"form_title": "F1", "form_type": "Bogus", "is_completed": "maybe"},
			// 行 5：与库内表单标题重复
			{"form_title": "Existing Form", "form_type": "Audit"},
		},
		Sections: []Row{
			// 行 4：引用 Forms 表中不存在的表单
			{"form_title": "Ghost", "section_name": "S1", "section_order": "1"},
			// 行 5：章节序号非整数
			{"form_title": "F1", "section_name": "S1", "section_order": "abc"},
		},
		Fields: []Row{
			// 行 4：字段类型与数据类型不兼容 + options 非法 JSON
			{"form_title": "F1", "section_name": "S1", "field_label": "Q1",
				"field_type": "Dropdown", "data_type": "text", "field_order": "1",
				"options": "not json"},
			// 行 5：字段序号在同章节内重复
			{"form_title": "F1", "section_name": "S1", "field_label": "Q2",
				"field_type": "Short Text", "data_type": "text", "field_order": "1"},
		},
	}

	errors := ValidateAllSheets(data, testLookups())

	expected := []struct {
		sheet   string
		row     int
		errType string
	}{
		{SheetForms, 4, ErrTypeInvalidDropdown},
		{SheetForms, 4, ErrTypeInvalidFormat},
		{SheetForms, 5, ErrTypeDuplicateEntry},
		{SheetSections, 4, ErrTypeInvalidRef},
		{SheetSections, 5, ErrTypeInvalidFormat},
		{SheetFields, 4, ErrTypeIncompatible},
		{SheetFields, 4, ErrTypeInvalidFormat},
		{SheetFields, 5, ErrTypeDuplicateFile},
	}

	if len(errors) != len(expected) {
		t.Fatalf("expected %d errors, got %d: %+v", len(expected), len(errors), errors)
	}
	for i, want := range expected {
		got := errors[i]
		if got.Sheet != want.sheet || got.Row != want.row || got.Type != want.errType {
			t.Errorf("errors[%d] = {%s row %d %s}, expected {%s row %d %s}",
				i, got.Sheet, got.Row, got.Type, want.sheet, want.row, want.errType)
		}
	}
}
