package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// 各实体 unique_code 前缀
const (
	CodePrefixFormType    = "FTYPE"
	CodePrefixForm        = "FORM"
	CodePrefixMainProcess = "MPROC"
	CodePrefixFocusArea   = "FAREA"
	CodePrefixCriteria    = "CRIT"
)

// NewID 生成 UUID 主键
func NewID() string {
	return uuid.NewString()
}

// NewUniqueCode 生成形如 FORM-A1B2C3D4 的业务编码
func NewUniqueCode(prefix string) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-" + short
}

// VersionedModel SCD Type 2 版本化实体的公共字段
// effective_end_date 为空表示当前有效版本，软删除通过设置该字段实现
type VersionedModel struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedOn         time.Time  `json:"created_on" gorm:"autoCreateTime"`
	CreatedBy         string     `json:"created_by" gorm:"type:varchar(36);index"`
	EffectiveEndDate  *time.Time `json:"effective_end_date" gorm:"type:timestamp;index"`
	PreviousVersionID *string    `json:"previous_version_id" gorm:"type:varchar(36)"`
	UniqueCode        string     `json:"unique_code" gorm:"type:varchar(50);index"`
}

// IsCurrent 是否为当前有效版本
func (m *VersionedModel) IsCurrent() bool {
	return m.EffectiveEndDate == nil
}

// MarkInactive 设置失效时间（软删除 / 版本退役）
func (m *VersionedModel) MarkInactive(t time.Time) {
	m.EffectiveEndDate = &t
}

// Restore 恢复为有效版本
func (m *VersionedModel) Restore() {
	m.EffectiveEndDate = nil
}

// SoftDeleteModel 布尔软删除实体的公共字段
type SoftDeleteModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedOn time.Time `json:"created_on" gorm:"autoCreateTime"`
	UpdatedOn time.Time `json:"updated_on" gorm:"autoUpdateTime"`
	IsDeleted bool      `json:"is_deleted" gorm:"type:boolean;default:false;index"`
}
