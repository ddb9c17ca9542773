package catalog

import (
	"encoding/json"
	"errors"
)

// 目录实体的业务错误，由 handler 映射为对应的 HTTP 状态码
var (
	ErrFormTypeNotFound       = errors.New("form type not found")
	ErrFormTypeNameTaken      = errors.New("FormType with this name already exists")
	ErrFormTypeNameRequired   = errors.New("Name is required")
	ErrFormTypeNameTooLong    = errors.New("Name exceeds the maximum length of 100 characters")
	ErrParentFormTypeNotFound = errors.New("Parent FormType with the given ID does not exist")
	ErrFormTypeSelfParent     = errors.New("FormType cannot be its own parent")
	ErrFormTypeInUse          = errors.New("Cannot delete FormType as it is being used by forms")
	ErrFormTypeHasSubTypes    = errors.New("Cannot delete FormType as it has sub-types")

	ErrDataTypeNotFound  = errors.New("data type not found")
	ErrDataTypeNameTaken = errors.New("Data type with this name already exists")
	ErrDataTypeInUse     = errors.New("Cannot delete data type as it is being used by field types")

	ErrFieldTypeNotFound  = errors.New("field type not found")
	ErrFieldTypeNameTaken = errors.New("Field type with this name already exists")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category with this name already exists")

	ErrNameRequired = errors.New("Name cannot be empty")
)

const (
	defaultPageSize  = 8
	dropdownPageSize = 1000
)

// timeLayout 目录接口统一的时间展示格式
const timeLayout = "2006-01-02 15:04:05"

// FormTypeListParams 表单类型列表查询参数
// Page/PageSize 任一给定或 source=dropdown 时启用分页
type FormTypeListParams struct {
	Search   string
	OrderBy  string
	Source   string
	Page     *int
	PageSize *int
}

// FormTypeInput 创建/更新表单类型的请求体
type FormTypeInput struct {
	Name             string  `json:"name" binding:"required"`
	Description      *string `json:"description"`
	ParentFormTypeID *string `json:"parent_form_type_id"`
}

// DataTypeInput 创建/更新数据类型的请求体
type DataTypeInput struct {
	Name            string          `json:"name" binding:"required"`
	ValidationRules json.RawMessage `json:"validation_rules"`
}

// FieldTypeInput 创建/更新字段类型的请求体
// FieldTypeID 非空时表示 upsert 更新已有记录
type FieldTypeInput struct {
	FieldTypeID     *string         `json:"field_type_id"`
	Label           string          `json:"label" binding:"required"`
	TypeID          string          `json:"type_id" binding:"required"`
	ValidationRules json.RawMessage `json:"validation_rules"`
	Dynamic         bool            `json:"dynamic"`
	EndPoint        *string         `json:"end_point"`
}

// CategoryInput 分类（主流程/关注领域/准则）的请求体
type CategoryInput struct {
	Name string `json:"name" binding:"required"`
}
