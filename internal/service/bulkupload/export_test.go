package bulkupload

import (
	"testing"
)

// TestWidthDisplay 测试存储宽度到下拉显示值的转换
func TestWidthDisplay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"四分之一", "25", "25% (1/4)"},
		{"全宽", "100", "100% (Full)"},
		{"非标准宽度加百分号", "40", "40%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := widthDisplay(tt.input)
			if result != tt.expected {
				t.Errorf("widthDisplay(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestWidthRoundTrip 导出的宽度显示值应能被导入解析回原值
func TestWidthRoundTrip(t *testing.T) {
	for stored := range widthDisplayMap {
		display := widthDisplay(stored)
		if parsed := ParseWidth(display); parsed != stored {
			t.Errorf("ParseWidth(widthDisplay(%q)) = %q, expected round trip", stored, parsed)
		}
	}
}

// TestBoolCell 导出的布尔值应是导入认可的表示
func TestBoolCell(t *testing.T) {
	if !ParseBoolean(boolCell(true)) {
		t.Errorf("boolCell(true) should parse back as true")
	}
	if ParseBoolean(boolCell(false)) {
		t.Errorf("boolCell(false) should parse back as false")
	}
	if !IsValidBooleanToken(boolCell(true)) || !IsValidBooleanToken(boolCell(false)) {
		t.Errorf("boolCell output should be a valid boolean token")
	}
}

// TestDecodeInfo 测试附加信息解码
func TestDecodeInfo(t *testing.T) {
	if decodeInfo(nil) != nil {
		t.Errorf("nil input should decode to nil")
	}
	if decodeInfo([]byte("not json")) != nil {
		t.Errorf("invalid JSON should decode to nil")
	}
	info := decodeInfo([]byte(`{"width": "50", "options": ["A"]}`))
	if info == nil || info["width"] != "50" {
		t.Errorf("decodeInfo = %v, expected width 50", info)
	}
}
