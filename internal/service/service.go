// Package service 提供统一的 service 导出
// 所有 service 按功能模块分类到子目录中
package service

import (
	// Bulk upload services
	bulkuploadService "github.com/fisker/nexforms-backend/internal/service/bulkupload"
	// Catalog services
	catalogService "github.com/fisker/nexforms-backend/internal/service/catalog"
	// Form design services
	formdesignService "github.com/fisker/nexforms-backend/internal/service/formdesign"
)

// Catalog services
type FormTypeService = catalogService.FormTypeService
type FieldTypeService = catalogService.FieldTypeService
type CategoryService = catalogService.CategoryService

var NewFormTypeService = catalogService.NewFormTypeService
var NewFieldTypeService = catalogService.NewFieldTypeService
var NewCategoryService = catalogService.NewCategoryService

// Form design services
type FormDesignService = formdesignService.Service
type WorkflowLinkage = formdesignService.WorkflowLinkage

var NewFormDesignService = formdesignService.NewService
var NewGormWorkflowLinkage = formdesignService.NewGormWorkflowLinkage

// Bulk upload services
type BulkUploadService = bulkuploadService.Service

var NewBulkUploadService = bulkuploadService.NewService
