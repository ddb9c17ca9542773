package model

import (
	"gorm.io/datatypes"
)

// DataType 基础数据类型（text/number/date/select/file/boolean 等）
type DataType struct {
	SoftDeleteModel
	Name            string         `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	ValidationRules datatypes.JSON `json:"validation_rules" gorm:"type:json"`
}

func (DataType) TableName() string {
	return "data_types"
}

// FieldType 字段类型，绑定到一个 DataType
// dynamic=true 时 endpoint 指向选项数据来源
type FieldType struct {
	SoftDeleteModel
	Name            string         `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	DataTypeID      string         `json:"data_type_id" gorm:"type:varchar(36);not null;index"`
	Dynamic         bool           `json:"dynamic" gorm:"type:boolean;default:false"`
	Endpoint        string         `json:"endpoint" gorm:"type:varchar(255)"`
	ValidationRules datatypes.JSON `json:"validation_rules" gorm:"type:json"`
	Default         bool           `json:"default" gorm:"type:boolean;default:false"`

	DataType *DataType `json:"data_type,omitempty" gorm:"foreignKey:DataTypeID"`
}

func (FieldType) TableName() string {
	return "field_types"
}
