package formdesign

import (
	"encoding/json"
	"testing"
)

// TestFieldInputUnmarshalJSON 未建模的属性应全部归入 Extra
func TestFieldInputUnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"label": "Severity",
		"name": "field_1700000000000_abc123",
		"type_id": "ft-uuid",
		"type": "select",
		"required": true,
		"dependency": {"field_name": "other"},
		"options": ["Low", "High"],
		"width": "50",
		"isMultiple": false
	}`)

	var f FieldInput
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if f.Label != "Severity" || f.TypeID != "ft-uuid" || !f.Required {
		t.Errorf("known keys not parsed: %+v", f)
	}
	if len(f.Dependency) == 0 {
		t.Errorf("dependency should be kept as raw JSON")
	}

	// 已建模的键不进 Extra
	for _, key := range []string{"label", "name", "type", "type_id", "required", "fields", "dependency"} {
		if _, ok := f.Extra[key]; ok {
			t.Errorf("known key %q leaked into Extra", key)
		}
	}

	// 其余键全部进 Extra
	if f.Extra["width"] != "50" {
		t.Errorf("Extra[width] = %v, expected 50", f.Extra["width"])
	}
	if f.Extra["isMultiple"] != false {
		t.Errorf("Extra[isMultiple] = %v, expected false", f.Extra["isMultiple"])
	}
	options, ok := f.Extra["options"].([]interface{})
	if !ok || len(options) != 2 {
		t.Errorf("Extra[options] = %v, expected two options", f.Extra["options"])
	}
}

// TestFieldInputUnmarshalNested 嵌套子字段也应正确解析
func TestFieldInputUnmarshalNested(t *testing.T) {
	data := []byte(`{
		"label": "Parent",
		"type_id": "ft-1",
		"fields": [
			{"label": "Child", "type_id": "ft-2", "maxLength": 100}
		]
	}`)

	var f FieldInput
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(f.Fields) != 1 {
		t.Fatalf("expected one child field, got %d", len(f.Fields))
	}
	child := f.Fields[0]
	if child.Label != "Child" {
		t.Errorf("child label = %q, expected Child", child.Label)
	}
	if child.Extra["maxLength"] != float64(100) {
		t.Errorf("child Extra[maxLength] = %v, expected 100", child.Extra["maxLength"])
	}
}
