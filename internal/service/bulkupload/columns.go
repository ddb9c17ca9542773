// Package bulkupload 实现表单的 Excel 批量导入、模板生成与导出
package bulkupload

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// 工作表名称
const (
	SheetForms      = "Forms"
	SheetSections   = "Sections"
	SheetFields     = "Fields"
	SheetReferences = "References"
	SheetValidation = "Validation Rules"
)

// 校验错误类型
const (
	ErrTypeMissingData     = "Missing Data"
	ErrTypeInvalidDropdown = "Invalid Dropdown Value"
	ErrTypeDuplicateFile   = "Duplicate in File"
	ErrTypeDuplicateEntry  = "Duplicate Entry"
	ErrTypeInvalidFormat   = "Invalid Format"
	ErrTypeInvalidRef      = "Invalid Reference"
	ErrTypeIncompatible    = "Incompatible Types"
)

// columnMapping 表头到内部字段名的映射
var columnMapping = map[string]string{
	// Forms 表
	"Form Title":   "form_title",
	"Form Type":    "form_type",
	"Description":  "description",
	"Is Completed": "is_completed",

	// Sections 表
	"Section Name":        "section_name",
	"Section Description": "section_description",
	"Section Order":       "section_order",
	"Dependency Section":  "dependency_section",
	"Dependency Field":    "dependency_field",
	"Dependency Option":   "dependency_option",
	"Dependency (JSON)":   "dependency",

	// Fields 表
	"Field Label":       "field_label",
	"Field Type":        "field_type",
	"Data Type":         "data_type",
	"Required":          "required",
	"Field Order":       "field_order",
	"Width":             "width",
	"Options":           "options",
	"Validation":        "validation",
	"Parent Field":      "parent_field",
	"Field Dep Section": "field_dep_section",
	"Field Dep Field":   "field_dep_field",
	"Field Dep Option":  "field_dep_option",
	"Dependency":        "field_dependency",
	"Additional Info":   "additional_info",
}

// requiredFields 各工作表必填列
var requiredFields = map[string][]string{
	"forms":    {"form_title", "form_type"},
	"sections": {"form_title", "section_name", "section_order"},
	"fields": {"form_title", "section_name", "field_label",
		"field_type", "data_type", "field_order"},
}

// dynamicMappings 根据字段类型名或标签中的关键字自动配置动态数据源
var dynamicMappings = []struct {
	Keyword  string
	Endpoint string
}{
	{"location", "/api/config/locations/"},
	{"department", "/api/config/departments/"},
	{"designation", "/api/config/designations/"},
	{"role", "/api/config/roles/"},
	{"employee", "/api/config/employees/list/"},
	{"user", "/api/config/employees/list/"},
}

// OriginalColumnName 把内部字段名还原为表头名
func OriginalColumnName(normalized string) string {
	for original, n := range columnMapping {
		if n == normalized {
			return original
		}
	}
	// 无映射时按单词首字母大写还原
	parts := strings.Split(normalized, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeColumn 把表头名转为内部字段名
func NormalizeColumn(header string) string {
	if n, ok := columnMapping[header]; ok {
		return n
	}
	return strings.ReplaceAll(strings.ToLower(header), " ", "_")
}

// ParseBoolean 解析布尔表示，TRUE/YES/1 为真，其余为假
func ParseBoolean(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	return v == "TRUE" || v == "YES" || v == "1"
}

// IsValidBooleanToken 检查是否为合法布尔表示
func IsValidBooleanToken(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "TRUE", "FALSE", "YES", "NO", "1", "0":
		return true
	}
	return false
}

// IsValidJSON 检查字符串是否为合法 JSON
func IsValidJSON(s string) bool {
	return json.Valid([]byte(s))
}

// ParseOrder 解析序号，容忍 Excel 数值单元格的 "2.0" 形式
func ParseOrder(value string) (int, error) {
	v := strings.TrimSpace(value)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %s", v)
	}
	return int(f), nil
}

// ParseWidth 从 "25% (1/4)" 这类表示中取出数值部分，缺省为 "100"
func ParseWidth(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "100"
	}
	return strings.TrimSpace(strings.Split(v, "%")[0])
}

const fieldNameCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateUniqueFieldName 生成内部字段名，与前端 field_{timestamp}_{random} 规则一致
func GenerateUniqueFieldName(prefix string) string {
	if prefix == "" {
		prefix = "field"
	}
	timestamp := time.Now().UnixMilli()
	b := make([]byte, 6)
	for i := range b {
		b[i] = fieldNameCharset[rand.Intn(len(fieldNameCharset))]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, timestamp, string(b))
}

// DynamicEndpointFor 按关键字匹配返回动态数据源端点，未命中返回空串
func DynamicEndpointFor(fieldTypeName, fieldLabel string) string {
	typeLower := strings.ToLower(fieldTypeName)
	labelLower := strings.ToLower(fieldLabel)
	for _, m := range dynamicMappings {
		if strings.Contains(typeLower, m.Keyword) || strings.Contains(labelLower, m.Keyword) {
			return m.Endpoint
		}
	}
	return ""
}
