package model

import (
	"gorm.io/datatypes"
)

// Form 表单定义，版本化实体
// root_form/parent_form/version 维护同一血统下的版本链
type Form struct {
	VersionedModel
	Title         string         `json:"title" gorm:"type:varchar(255);not null;index"`
	FormTypeID    string         `json:"form_type_id" gorm:"type:varchar(36);not null;index"`
	Description   string         `json:"description" gorm:"type:text"`
	MainProcessID *string        `json:"main_process_id" gorm:"type:varchar(36);index"`
	CriteriaID    *string        `json:"criteria_id" gorm:"type:varchar(36);index"`
	LocationID    *string        `json:"location_id" gorm:"type:varchar(255)"`
	IsCompleted   bool           `json:"is_completed" gorm:"type:boolean;default:false"`
	ParentFormID  *string        `json:"parent_form_id" gorm:"type:varchar(36);index"`
	RootFormID    *string        `json:"root_form_id" gorm:"type:varchar(36);index"`
	Version       int            `json:"version" gorm:"type:int;default:1"`
	SystemConfig  datatypes.JSON `json:"system_config" gorm:"type:json"`
	UserConfig    datatypes.JSON `json:"user_config" gorm:"type:json"`

	FormType *FormType `json:"form_type,omitempty" gorm:"foreignKey:FormTypeID"`
}

func (Form) TableName() string {
	return "forms"
}

// FormSection 表单章节
type FormSection struct {
	SoftDeleteModel
	FormID      string         `json:"form_id" gorm:"type:varchar(36);not null;index"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Order       int            `json:"order" gorm:"column:order_no;type:int;default:0"`
	Dependency  datatypes.JSON `json:"dependency" gorm:"type:json"`
}

func (FormSection) TableName() string {
	return "form_sections"
}

// FormField 表单字段，parent_field 支持嵌套子字段
type FormField struct {
	SoftDeleteModel
	Label          string         `json:"label" gorm:"type:varchar(255);not null"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null;index"`
	FieldTypeID    string         `json:"field_type_id" gorm:"type:varchar(36);not null;index"`
	SectionID      string         `json:"section_id" gorm:"type:varchar(36);not null;index"`
	Required       bool           `json:"required" gorm:"type:boolean;default:false"`
	Order          int            `json:"order" gorm:"column:order_no;type:int;default:0"`
	AdditionalInfo datatypes.JSON `json:"additional_info" gorm:"type:json"`
	ParentFieldID  *string        `json:"parent_field_id" gorm:"type:varchar(36);index"`
	Dependency     datatypes.JSON `json:"dependency" gorm:"type:json"`

	FieldType *FieldType `json:"field_type,omitempty" gorm:"foreignKey:FieldTypeID"`
}

func (FormField) TableName() string {
	return "form_fields"
}

// FormDraft 表单设计草稿快照
type FormDraft struct {
	SoftDeleteModel
	FormID    string         `json:"form_id" gorm:"type:varchar(36);not null;index"`
	DraftData datatypes.JSON `json:"draft_data" gorm:"type:json"`
}

func (FormDraft) TableName() string {
	return "form_drafts"
}
