package model

import (
	"regexp"
	"testing"
	"time"
)

// TestNewUniqueCode 测试业务编码格式
func TestNewUniqueCode(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		pattern string
	}{
		{"表单类型前缀", CodePrefixFormType, `^FTYPE-[0-9A-F]{8}$`},
		{"表单前缀", CodePrefixForm, `^FORM-[0-9A-F]{8}$`},
		{"主流程前缀", CodePrefixMainProcess, `^MPROC-[0-9A-F]{8}$`},
		{"关注领域前缀", CodePrefixFocusArea, `^FAREA-[0-9A-F]{8}$`},
		{"准则前缀", CodePrefixCriteria, `^CRIT-[0-9A-F]{8}$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := NewUniqueCode(tt.prefix)
			if !regexp.MustCompile(tt.pattern).MatchString(code) {
				t.Errorf("NewUniqueCode(%q) = %q, does not match %s", tt.prefix, code, tt.pattern)
			}
		})
	}
}

// TestNewUniqueCodeUniqueness 连续生成不应重复
func TestNewUniqueCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := NewUniqueCode(CodePrefixForm)
		if seen[code] {
			t.Fatalf("duplicate unique code generated: %s", code)
		}
		seen[code] = true
	}
}

// TestVersionedModelLifecycle 测试版本化实体的有效性切换
func TestVersionedModelLifecycle(t *testing.T) {
	m := &VersionedModel{ID: NewID()}
	if !m.IsCurrent() {
		t.Errorf("new model should be current")
	}

	now := time.Now()
	m.MarkInactive(now)
	if m.IsCurrent() {
		t.Errorf("model should be inactive after MarkInactive")
	}
	if m.EffectiveEndDate == nil || !m.EffectiveEndDate.Equal(now) {
		t.Errorf("effective_end_date = %v, expected %v", m.EffectiveEndDate, now)
	}

	m.Restore()
	if !m.IsCurrent() {
		t.Errorf("model should be current after Restore")
	}
}
