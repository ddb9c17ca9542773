package app

import (
	"github.com/fisker/nexforms-backend/internal/api/handler"
)

// Handlers 包含所有 Handler 实例
type Handlers struct {
	FormType   *handler.FormTypeHandler
	DataType   *handler.DataTypeHandler
	FieldType  *handler.FieldTypeHandler
	Category   *handler.CategoryHandler
	Form       *handler.FormHandler
	FormDesign *handler.FormDesignHandler
	FormDraft  *handler.FormDraftHandler
	BulkUpload *handler.BulkUploadHandler
}

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(services *Services) *Handlers {
	return &Handlers{
		FormType:   handler.NewFormTypeHandler(services.FormType),
		DataType:   handler.NewDataTypeHandler(services.FieldType),
		FieldType:  handler.NewFieldTypeHandler(services.FieldType),
		Category:   handler.NewCategoryHandler(services.Category),
		Form:       handler.NewFormHandler(services.FormDesign),
		FormDesign: handler.NewFormDesignHandler(services.FormDesign),
		FormDraft:  handler.NewFormDraftHandler(services.FormDesign),
		BulkUpload: handler.NewBulkUploadHandler(services.BulkUpload),
	}
}
