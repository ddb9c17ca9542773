package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fisker/nexforms-backend/internal/api/handler"
	"github.com/fisker/nexforms-backend/internal/api/middleware"
)

// Setup 装配全部路由
// 业务接口统一挂在 /api 下并要求 JWT 认证，/metrics 和 /health 开放
func Setup(
	formTypeHandler *handler.FormTypeHandler,
	dataTypeHandler *handler.DataTypeHandler,
	fieldTypeHandler *handler.FieldTypeHandler,
	categoryHandler *handler.CategoryHandler,
	formHandler *handler.FormHandler,
	formDesignHandler *handler.FormDesignHandler,
	formDraftHandler *handler.FormDraftHandler,
	bulkUploadHandler *handler.BulkUploadHandler,
	jwtSecret string,
	dropdownTTL time.Duration,
	mode string,
) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()

	// 批量导入文件走 multipart，上限 32MB 足够
	r.MaxMultipartMemory = 32 << 20

	// 使用自定义的 recovery 中间件（打印详细错误信息）
	r.Use(middleware.RecoveryMiddleware())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.MetricsMiddleware())

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	api.Use(middleware.OperationLogMiddleware())

	// 下拉数据接口读多写少，短 TTL 缓存
	dropdownCache := middleware.CacheResponse(dropdownTTL)

	// Form Type CRUD
	api.GET("/form_types", dropdownCache, formTypeHandler.List)
	api.POST("/form_types/create", formTypeHandler.Create)
	api.GET("/form_types/:pk", formTypeHandler.Detail)
	api.PUT("/form_types/:pk/update", formTypeHandler.Update)
	api.PATCH("/form_types/:pk/update", formTypeHandler.Update)
	api.DELETE("/form_types/:pk/delete", formTypeHandler.Delete)

	// Data Type CRUD
	api.GET("/data_types", dropdownCache, dataTypeHandler.List)
	api.POST("/data_types/create", dataTypeHandler.Create)
	api.PUT("/data_types/:pk/update", dataTypeHandler.Update)
	api.PATCH("/data_types/:pk/update", dataTypeHandler.Update)
	api.DELETE("/data_types/:pk/delete", dataTypeHandler.Delete)

	// Field Type CRUD
	api.GET("/field_types", dropdownCache, fieldTypeHandler.List)
	api.POST("/field_types/create", fieldTypeHandler.Save)
	api.PUT("/field_types/update/:pk", fieldTypeHandler.Update)
	api.PATCH("/field_types/update/:pk", fieldTypeHandler.Update)
	api.DELETE("/field_types/delete/:pk", fieldTypeHandler.Delete)

	// Form CRUD
	api.GET("/form/get", formHandler.List)
	api.GET("/form/list", formHandler.ListAll)
	api.POST("/form/create", formHandler.Create)
	api.DELETE("/form/delete/:pk", formHandler.Delete)
	api.GET("/form/by_type", formHandler.ByType)
	api.GET("/form/with_sections", formHandler.WithSections)
	api.GET("/form/:pk", formHandler.Detail)

	// Form Fields
	api.GET("/form/fields/get/:form_id", formDesignHandler.GetFields)
	api.POST("/form/fields/create/:form_id", formDesignHandler.SaveFields)

	// Form Draft
	api.GET("/form_draft/get/:form_id", formDraftHandler.Get)
	api.POST("/form_draft/save/:form_id", formDraftHandler.Save)

	// Bulk Upload
	api.GET("/form/bulk/template/download", bulkUploadHandler.DownloadTemplate)
	api.POST("/form/bulk/upload", bulkUploadHandler.Upload)
	api.GET("/form/bulk/export", bulkUploadHandler.Export)

	// Main Process CRUD
	api.GET("/main_processes", categoryHandler.ListMainProcesses)
	api.POST("/main_processes/create", categoryHandler.CreateMainProcess)
	api.GET("/main_processes/:pk", categoryHandler.GetMainProcess)
	api.PUT("/main_processes/:pk/update", categoryHandler.UpdateMainProcess)
	api.PATCH("/main_processes/:pk/update", categoryHandler.UpdateMainProcess)
	api.DELETE("/main_processes/:pk/delete", categoryHandler.DeleteMainProcess)

	// Focus Area CRUD
	api.GET("/focus_areas", categoryHandler.ListFocusAreas)
	api.POST("/focus_areas/create", categoryHandler.CreateFocusArea)
	api.GET("/focus_areas/:pk", categoryHandler.GetFocusArea)
	api.PUT("/focus_areas/:pk/update", categoryHandler.UpdateFocusArea)
	api.PATCH("/focus_areas/:pk/update", categoryHandler.UpdateFocusArea)
	api.DELETE("/focus_areas/:pk/delete", categoryHandler.DeleteFocusArea)

	// Criteria CRUD
	api.GET("/criteria", categoryHandler.ListCriteria)
	api.POST("/criteria/create", categoryHandler.CreateCriteria)
	api.GET("/criteria/:pk", categoryHandler.GetCriteria)
	api.PUT("/criteria/:pk/update", categoryHandler.UpdateCriteria)
	api.PATCH("/criteria/:pk/update", categoryHandler.UpdateCriteria)
	api.DELETE("/criteria/:pk/delete", categoryHandler.DeleteCriteria)

	// Prometheus Metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check (支持 GET 和 HEAD 方法)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"type":   "api-server",
		})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	return r
}
