package bulkupload

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/fisker/nexforms-backend/internal/model"
)

func makeCreatedField(label, realName string) *createdField {
	return &createdField{
		field: &model.FormField{
			Label: label,
			Name:  realName,
		},
	}
}

// TestPatchDependency 测试依赖 JSON 中按标签引用的字段名回填
func TestPatchDependency(t *testing.T) {
	cf := makeCreatedField("Mode", "field_1700000000000_abc123")
	fieldMap := map[string]*createdField{
		"basic|mode": cf,
	}
	sections := []*createdSection{
		{section: &model.FormSection{Name: "Basic"}, fields: []*createdField{cf}},
	}

	raw := datatypes.JSON(`{
		"field_name": "Mode",
		"field_section": "Basic",
		"options_selected": ["Advanced"],
		"cascader_selection": [["Basic", "Mode", "Advanced"]],
		"multiple_field_dependencies": [
			{"field_name": "Mode", "field_section": "Basic", "options_selected": ["Advanced"]}
		]
	}`)

	patched, changed := patchDependency(raw, fieldMap, sections)
	if !changed {
		t.Fatalf("expected dependency to be patched")
	}

	var dep map[string]interface{}
	if err := json.Unmarshal(patched, &dep); err != nil {
		t.Fatalf("patched dependency is not valid JSON: %v", err)
	}

	if dep["field_name"] != cf.field.Name {
		t.Errorf("field_name = %v, expected %s", dep["field_name"], cf.field.Name)
	}

	cascader := dep["cascader_selection"].([]interface{})
	path := cascader[0].([]interface{})
	if path[1] != cf.field.Name {
		t.Errorf("cascader field name = %v, expected %s", path[1], cf.field.Name)
	}

	multi := dep["multiple_field_dependencies"].([]interface{})
	item := multi[0].(map[string]interface{})
	if item["field_name"] != cf.field.Name {
		t.Errorf("multiple_field_dependencies field name = %v, expected %s", item["field_name"], cf.field.Name)
	}
}

// TestPatchDependencyNoChange 不需要回填的情况应原样返回
func TestPatchDependencyNoChange(t *testing.T) {
	cf := makeCreatedField("Mode", "field_1700000000000_abc123")
	fieldMap := map[string]*createdField{"basic|mode": cf}
	sections := []*createdSection{
		{section: &model.FormSection{Name: "Basic"}, fields: []*createdField{cf}},
	}

	tests := []struct {
		name string
		raw  datatypes.JSON
	}{
		{"空依赖", nil},
		{"非JSON对象", datatypes.JSON(`"just a string"`)},
		{"缺少field_name", datatypes.JSON(`{"field_section": "Basic"}`)},
		{"引用已是真实字段名", datatypes.JSON(`{"field_name": "field_1700000000000_abc123", "field_section": "Basic"}`)},
		{"引用的字段不存在", datatypes.JSON(`{"field_name": "Ghost", "field_section": "Basic"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, changed := patchDependency(tt.raw, fieldMap, sections)
			if changed {
				t.Errorf("expected dependency to stay unchanged")
			}
		})
	}
}

// TestBuildSimpleDependency 测试三列简单依赖合成的 JSON 结构
func TestBuildSimpleDependency(t *testing.T) {
	dep := buildSimpleDependency("field_abc", "General", "Yes")

	if dep["field_name"] != "field_abc" || dep["field_section"] != "General" {
		t.Errorf("unexpected dependency target: %+v", dep)
	}

	options := dep["options_selected"].([]interface{})
	if len(options) != 1 || options[0] != "Yes" {
		t.Errorf("options_selected = %v, expected [Yes]", options)
	}

	cascader := dep["cascader_selection"].([]interface{})
	path := cascader[0].([]interface{})
	if len(path) != 3 || path[0] != "General" || path[1] != "field_abc" || path[2] != "Yes" {
		t.Errorf("cascader_selection = %v, expected [[General field_abc Yes]]", cascader)
	}

	multi := dep["multiple_field_dependencies"].([]interface{})
	if len(multi) != 1 {
		t.Fatalf("expected one multiple_field_dependencies entry, got %d", len(multi))
	}
	entry := multi[0].(map[string]interface{})
	if entry["field_name"] != "field_abc" || entry["field_section"] != "General" {
		t.Errorf("unexpected multiple_field_dependencies entry: %+v", entry)
	}
}
