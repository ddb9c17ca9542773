package catalog

import (
	"testing"

	"github.com/fisker/nexforms-backend/internal/model"
)

// TestOrderClause 测试排序参数到 SQL 排序子句的转换
func TestOrderClause(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"按名称升序", "name", "name"},
		{"按名称降序", "-name", "name DESC"},
		{"按创建时间降序", "-created_on", "created_on DESC"},
		{"按业务编码升序", "unique_code", "unique_code"},
		{"非白名单列回退默认", "password", "name"},
		{"非白名单列降序也回退升序", "-password", "name"},
		{"空串回退默认", "", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := orderClause(tt.input)
			if result != tt.expected {
				t.Errorf("orderClause(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestSerializeFormTypeList 测试列表序列化：id 暴露业务编码，父类型按名称展示
func TestSerializeFormTypeList(t *testing.T) {
	parentID := "parent-uuid"
	formTypes := []model.FormType{
		{
			VersionedModel:   model.VersionedModel{ID: "child-uuid", UniqueCode: "FTYPE-AAAA1111"},
			Name:             "Sub Audit",
			ParentFormTypeID: &parentID,
		},
		{
			VersionedModel: model.VersionedModel{ID: parentID, UniqueCode: "FTYPE-BBBB2222"},
			Name:           "Audit",
		},
	}
	names := map[string]string{parentID: "Audit"}

	out := serializeFormTypeList(formTypes, names)
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}

	child := out[0]
	if child["id"] != "FTYPE-AAAA1111" {
		t.Errorf("id should expose unique_code, got %v", child["id"])
	}
	if child["version_id"] != "child-uuid" {
		t.Errorf("version_id should expose row primary key, got %v", child["version_id"])
	}
	if child["parent_form_type"] != "Audit" {
		t.Errorf("parent_form_type = %v, expected Audit", child["parent_form_type"])
	}

	root := out[1]
	if root["parent_form_type"] != nil {
		t.Errorf("root form type should have nil parent, got %v", root["parent_form_type"])
	}
}

// TestSerializeFormTypeListUnknownParent 父类型已失效时展示为空
func TestSerializeFormTypeListUnknownParent(t *testing.T) {
	retiredParent := "retired-uuid"
	formTypes := []model.FormType{
		{
			VersionedModel:   model.VersionedModel{ID: "a", UniqueCode: "FTYPE-CCCC3333"},
			Name:             "Orphan",
			ParentFormTypeID: &retiredParent,
		},
	}

	out := serializeFormTypeList(formTypes, map[string]string{})
	if out[0]["parent_form_type"] != nil {
		t.Errorf("unknown parent should serialize as nil, got %v", out[0]["parent_form_type"])
	}
}
