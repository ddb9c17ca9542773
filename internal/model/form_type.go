package model

// FormType 表单类型，支持父子层级和 SCD2 版本化
type FormType struct {
	VersionedModel
	Name             string  `json:"name" gorm:"type:varchar(100);not null;index"`
	Description      string  `json:"description" gorm:"type:text"`
	ParentFormTypeID *string `json:"parent_form_type_id" gorm:"type:varchar(36);index"`
}

func (FormType) TableName() string {
	return "form_types"
}
