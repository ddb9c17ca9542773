package formdesign

import (
	"encoding/json"
	"errors"
)

// 服务层的哨兵错误，处理器据此映射 HTTP 状态码
var (
	ErrFormNotFound        = errors.New("form not found")
	ErrFormTypeNotFound    = errors.New("form type not found")
	ErrMainProcessNotFound = errors.New("main process not found")
	ErrCriteriaNotFound    = errors.New("criteria not found")
	ErrFieldTypeNotFound   = errors.New("field type not found")
	ErrVersionNotFound     = errors.New("version not found")
	ErrDraftNotFound       = errors.New("no draft found for this form")
	ErrSectionNameRequired = errors.New("section name is required")
	ErrVersionIDRequired   = errors.New("version_id is required for optimistic locking")
	ErrVersionConflict     = errors.New("record has been modified or deleted by another user")
	ErrVersionMismatch     = errors.New("version id doesn't match form id")
	ErrFormLinkedWorkflow  = errors.New("form is linked to a workflow")
)

// FormDetails 保存请求里的表单元数据，form_type 可以是 unique_code 或 UUID
type FormDetails struct {
	Title       string  `json:"title"`
	FormType    string  `json:"form_type"`
	Description *string `json:"description"`
}

// FieldInput 设计器中的单个字段。除已知键外的属性全部归入 Extra，
// 持久化时作为 additional_info 保存
type FieldInput struct {
	Label      string          `json:"label"`
	Name       string          `json:"name"`
	TypeID     string          `json:"type_id"`
	Required   bool            `json:"required"`
	Dependency json.RawMessage `json:"dependency"`
	Fields     []FieldInput    `json:"fields"`
	Extra      map[string]interface{}
}

// 这些键单独建模，不进 additional_info
var fieldKnownKeys = map[string]bool{
	"label": true, "name": true, "type": true, "type_id": true,
	"required": true, "fields": true, "dependency": true,
}

func (f *FieldInput) UnmarshalJSON(data []byte) error {
	type alias FieldInput
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra := make(map[string]interface{})
	for key, value := range raw {
		if fieldKnownKeys[key] {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		extra[key] = v
	}

	*f = FieldInput(known)
	f.Extra = extra
	return nil
}

// SectionInput 设计器中的章节及其字段
type SectionInput struct {
	SectionName string          `json:"section_name"`
	Dependency  json.RawMessage `json:"dependency"`
	Fields      []FieldInput    `json:"fields"`
}

// SaveFieldsInput create_form_fields 的请求体
type SaveFieldsInput struct {
	Sections     []SectionInput         `json:"sections"`
	FormDetails  FormDetails            `json:"form_details"`
	VersionID    string                 `json:"version_id"`
	SystemConfig map[string]interface{} `json:"system_config"`
	UserConfig   map[string]interface{} `json:"user_config"`
}

// SaveDraftInput save_form_draft 的请求体
type SaveDraftInput struct {
	DraftData   map[string]interface{} `json:"draft_data" binding:"required"`
	FormDetails FormDetails            `json:"form_details"`
	VersionID   string                 `json:"version_id"`
}

// SaveResult 字段或草稿保存的返回结果。NewVersion 为 true 表示
// 本次保存因工作流关联而分叉出了新版本
type SaveResult struct {
	FormDraftID string `json:"form_draft_id"`
	FormID      string `json:"form_id"`
	Version     int    `json:"version"`
	VersionID   string `json:"version_id"`
	UniqueCode  string `json:"unique_code"`
	NewVersion  bool   `json:"-"`
}

// CreateFormInput 新建表单的请求体
type CreateFormInput struct {
	Title        string                 `json:"title" binding:"required"`
	TypeID       string                 `json:"type_id" binding:"required"`
	Desc         string                 `json:"desc"`
	SystemConfig map[string]interface{} `json:"system_config"`
	UserConfig   map[string]interface{} `json:"user_config"`
	MainProcess  string                 `json:"main_process"`
	Criteria     string                 `json:"criteria"`
	Location     string                 `json:"location"`
}

// ListFormsParams 表单列表查询参数
type ListFormsParams struct {
	PageNumber   int
	Search       string
	IsCompleted  *bool // nil 表示不过滤
	FormTypeID   string
	FormTypeName string
	MainProcess  string
	Criteria     string
	Location     string
}

// FormPage 分页的表单列表
type FormPage struct {
	Forms    []map[string]interface{} `json:"forms"`
	ObjCount int                      `json:"obj_count"`
	MaxPages int                      `json:"max_pages"`
	MaxRows  int                      `json:"max_rows"`
}
