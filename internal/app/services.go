package app

import (
	"github.com/fisker/nexforms-backend/internal/service"
	"github.com/fisker/nexforms-backend/pkg/database"
)

// Services 包含所有 Service 实例
type Services struct {
	FormType   *service.FormTypeService
	FieldType  *service.FieldTypeService
	Category   *service.CategoryService
	FormDesign *service.FormDesignService
	BulkUpload *service.BulkUploadService
}

// InitializeServices 初始化所有 Service
func InitializeServices(repos *Repositories) *Services {
	formTypeService := service.NewFormTypeService(repos.FormType)
	fieldTypeService := service.NewFieldTypeService(repos.FieldType)
	categoryService := service.NewCategoryService(repos.Category)

	// 工作流联动通过数据库中的关联表判断，保存被引用表单时自动建新版本
	linkage := service.NewGormWorkflowLinkage(database.DB)
	formDesignService := service.NewFormDesignService(repos.Form, repos.FormType, repos.Category, linkage)

	bulkUploadService := service.NewBulkUploadService(repos.Form, repos.FormType, repos.FieldType)

	return &Services{
		FormType:   formTypeService,
		FieldType:  fieldTypeService,
		Category:   categoryService,
		FormDesign: formDesignService,
		BulkUpload: bulkUploadService,
	}
}
