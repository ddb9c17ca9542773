package model

// MainProcess 主流程分类
type MainProcess struct {
	VersionedModel
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

func (MainProcess) TableName() string {
	return "main_processes"
}

// FocusArea 关注领域分类
type FocusArea struct {
	VersionedModel
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

func (FocusArea) TableName() string {
	return "focus_areas"
}

// Criteria 评估准则分类
type Criteria struct {
	VersionedModel
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

func (Criteria) TableName() string {
	return "criteria"
}
