package model

// WorkflowChecklist 工作流与表单的挂载关系
// checklist_id 指向 Form.ID，存在有效记录说明表单已被流程引用，
// 此时对表单结构的修改必须走版本分叉而不是原地更新
type WorkflowChecklist struct {
	SoftDeleteModel
	ChecklistID     string `json:"checklist_id" gorm:"type:varchar(36);not null;index"`
	WorkflowStageID string `json:"workflow_stage_id" gorm:"type:varchar(36);index"`
}

func (WorkflowChecklist) TableName() string {
	return "workflow_checklists"
}
