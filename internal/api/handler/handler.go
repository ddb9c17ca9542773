// Package handler 提供统一的 handler 导出
// 所有 handler 按功能模块分类到子目录中
package handler

import (
	// Forms handlers
	formsHandler "github.com/fisker/nexforms-backend/internal/api/handler/forms"
)

// Forms handlers
type FormTypeHandler = formsHandler.FormTypeHandler
type DataTypeHandler = formsHandler.DataTypeHandler
type FieldTypeHandler = formsHandler.FieldTypeHandler
type CategoryHandler = formsHandler.CategoryHandler
type FormHandler = formsHandler.FormHandler
type FormDesignHandler = formsHandler.FormDesignHandler
type FormDraftHandler = formsHandler.FormDraftHandler
type BulkUploadHandler = formsHandler.BulkUploadHandler

var NewFormTypeHandler = formsHandler.NewFormTypeHandler
var NewDataTypeHandler = formsHandler.NewDataTypeHandler
var NewFieldTypeHandler = formsHandler.NewFieldTypeHandler
var NewCategoryHandler = formsHandler.NewCategoryHandler
var NewFormHandler = formsHandler.NewFormHandler
var NewFormDesignHandler = formsHandler.NewFormDesignHandler
var NewFormDraftHandler = formsHandler.NewFormDraftHandler
var NewBulkUploadHandler = formsHandler.NewBulkUploadHandler
