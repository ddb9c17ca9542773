package formdesign

import (
	"gorm.io/gorm"

	"github.com/fisker/nexforms-backend/internal/model"
)

// WorkflowLinkage 判断表单是否被工作流引用。
// 被引用的表单保存时走 SCD Type 2 分叉，未被引用的表单原地更新
type WorkflowLinkage interface {
	IsLinked(formID string) (bool, error)
}

// GormWorkflowLinkage 基于 workflow_checklists 表的默认实现
type GormWorkflowLinkage struct {
	db *gorm.DB
}

func NewGormWorkflowLinkage(db *gorm.DB) *GormWorkflowLinkage {
	return &GormWorkflowLinkage{db: db}
}

func (l *GormWorkflowLinkage) IsLinked(formID string) (bool, error) {
	var count int64
	err := l.db.Model(&model.WorkflowChecklist{}).
		Where("checklist_id = ? AND is_deleted = ?", formID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
