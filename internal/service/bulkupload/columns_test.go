package bulkupload

import (
	"regexp"
	"testing"
)

// TestNormalizeColumn 测试表头到内部字段名的规范化
func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Forms表映射", "Form Title", "form_title"},
		{"Forms表类型列", "Form Type", "form_type"},
		{"布尔列", "Is Completed", "is_completed"},
		{"Sections表JSON依赖列", "Dependency (JSON)", "dependency"},
		{"Fields表依赖列", "Dependency", "field_dependency"},
		{"Fields表附加信息列", "Additional Info", "additional_info"},
		{"未映射表头按小写下划线处理", "Custom Column", "custom_column"},
		{"已是小写的未知表头", "remarks", "remarks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeColumn(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeColumn(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestOriginalColumnName 测试内部字段名还原为表头名
func TestOriginalColumnName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"有映射的字段", "form_title", "Form Title"},
		{"有映射的依赖字段", "field_dependency", "Dependency"},
		{"无映射按首字母大写还原", "custom_column", "Custom Column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OriginalColumnName(tt.input)
			if result != tt.expected {
				t.Errorf("OriginalColumnName(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestParseBoolean 测试布尔解析
func TestParseBoolean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"TRUE", "TRUE", true},
		{"小写true", "true", true},
		{"YES", "YES", true},
		{"数字1", "1", true},
		{"带空格", "  yes  ", true},
		{"FALSE", "FALSE", false},
		{"NO", "no", false},
		{"数字0", "0", false},
		{"空串", "", false},
		{"无效值按假处理", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseBoolean(tt.input)
			if result != tt.expected {
				t.Errorf("ParseBoolean(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestIsValidBooleanToken 测试布尔表示合法性检查
func TestIsValidBooleanToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"TRUE", "TRUE", true},
		{"FALSE", "FALSE", true},
		{"yes小写", "yes", true},
		{"no小写", "no", true},
		{"数字1", "1", true},
		{"数字0", "0", true},
		{"带空格", " True ", true},
		{"非法值", "maybe", false},
		{"空串", "", false},
		{"数字2", "2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidBooleanToken(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidBooleanToken(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestParseOrder 测试序号解析（兼容 Excel 数值单元格的小数形式）
func TestParseOrder(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int
		expectErr bool
	}{
		{"普通整数", "2", 2, false},
		{"带空格", " 3 ", 3, false},
		{"Excel小数形式", "2.0", 2, false},
		{"浮点非整数", "2.5", 0, true},
		{"非数字", "abc", 0, true},
		{"空串", "", 0, true},
		{"负数可解析", "-1", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseOrder(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseOrder(%q) expected error, got %d", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseOrder(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result != tt.expected {
				t.Errorf("ParseOrder(%q) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

// TestParseWidth 测试宽度解析
func TestParseWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"下拉格式", "25% (1/4)", "25"},
		{"全宽", "100% (Full)", "100"},
		{"纯数字", "50", "50"},
		{"空串取默认", "", "100"},
		{"带空格", "  75% (3/4)  ", "75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseWidth(tt.input)
			if result != tt.expected {
				t.Errorf("ParseWidth(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestGenerateUniqueFieldName 测试内部字段名的格式
func TestGenerateUniqueFieldName(t *testing.T) {
	pattern := regexp.MustCompile(`^field_\d+_[a-z0-9]{6}$`)

	name := GenerateUniqueFieldName("")
	if !pattern.MatchString(name) {
		t.Errorf("GenerateUniqueFieldName(\"\") = %q, does not match field_{timestamp}_{random}", name)
	}

	custom := GenerateUniqueFieldName("sig")
	customPattern := regexp.MustCompile(`^sig_\d+_[a-z0-9]{6}$`)
	if !customPattern.MatchString(custom) {
		t.Errorf("GenerateUniqueFieldName(\"sig\") = %q, does not match sig_{timestamp}_{random}", custom)
	}
}

// TestDynamicEndpointFor 测试动态数据源端点匹配
func TestDynamicEndpointFor(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		label    string
		expected string
	}{
		{"类型名命中location", "Location Dropdown", "Office", "/api/config/locations/"},
		{"标签命中department", "Dropdown", "Department Name", "/api/config/departments/"},
		{"employee和user同端点", "Employee Picker", "", "/api/config/employees/list/"},
		{"user关键字", "Dropdown", "Approving User", "/api/config/employees/list/"},
		{"大小写不敏感", "ROLE selector", "", "/api/config/roles/"},
		{"未命中返回空", "Text", "Comments", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DynamicEndpointFor(tt.typeName, tt.label)
			if result != tt.expected {
				t.Errorf("DynamicEndpointFor(%q, %q) = %q, expected %q", tt.typeName, tt.label, result, tt.expected)
			}
		})
	}
}
