package forms

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/catalog"
	"github.com/fisker/nexforms-backend/internal/service/formdesign"
)

// currentUsername 从认证中间件写入的上下文取用户名
func currentUsername(c *gin.Context) string {
	if v, exists := c.Get("username"); exists {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// respond 带自定义 message 的成功响应
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, model.Response{Code: 0, Message: message, Data: data})
}

// serviceErrorStatus 业务错误到 HTTP 状态码的映射
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrFormTypeNotFound),
		errors.Is(err, catalog.ErrDataTypeNotFound),
		errors.Is(err, catalog.ErrFieldTypeNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, formdesign.ErrFormNotFound),
		errors.Is(err, formdesign.ErrFormTypeNotFound),
		errors.Is(err, formdesign.ErrMainProcessNotFound),
		errors.Is(err, formdesign.ErrCriteriaNotFound),
		errors.Is(err, formdesign.ErrFieldTypeNotFound),
		errors.Is(err, formdesign.ErrVersionNotFound),
		errors.Is(err, formdesign.ErrDraftNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, formdesign.ErrVersionConflict),
		errors.Is(err, formdesign.ErrVersionMismatch):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrFormTypeNameTaken),
		errors.Is(err, catalog.ErrFormTypeNameRequired),
		errors.Is(err, catalog.ErrFormTypeNameTooLong),
		errors.Is(err, catalog.ErrParentFormTypeNotFound),
		errors.Is(err, catalog.ErrFormTypeSelfParent),
		errors.Is(err, catalog.ErrFormTypeInUse),
		errors.Is(err, catalog.ErrFormTypeHasSubTypes),
		errors.Is(err, catalog.ErrDataTypeNameTaken),
		errors.Is(err, catalog.ErrDataTypeInUse),
		errors.Is(err, catalog.ErrFieldTypeNameTaken),
		errors.Is(err, catalog.ErrCategoryNameTaken),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, formdesign.ErrSectionNameRequired),
		errors.Is(err, formdesign.ErrVersionIDRequired),
		errors.Is(err, formdesign.ErrFormLinkedWorkflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError 统一业务错误出口
func handleServiceError(c *gin.Context, err error, context ...string) {
	status := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		model.HandleError(c, status, err, context...)
		return
	}
	c.JSON(status, model.Error(status, serviceErrorMessage(err)))
}

// serviceErrorMessage 业务错误的用户可读文案
func serviceErrorMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrFormTypeNotFound):
		return "FormType not found"
	case errors.Is(err, catalog.ErrDataTypeNotFound):
		return "Data type not found"
	case errors.Is(err, catalog.ErrFieldTypeNotFound):
		return "Field type not found"
	case errors.Is(err, formdesign.ErrFormNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return "Form not found"
	case errors.Is(err, formdesign.ErrFormTypeNotFound):
		return "FormType not found"
	case errors.Is(err, formdesign.ErrMainProcessNotFound):
		return "Main process not found"
	case errors.Is(err, formdesign.ErrCriteriaNotFound):
		return "Criteria not found"
	case errors.Is(err, formdesign.ErrFieldTypeNotFound):
		return "Field type not found"
	case errors.Is(err, formdesign.ErrVersionNotFound):
		return "Version not found"
	case errors.Is(err, formdesign.ErrDraftNotFound):
		return "No draft found for this form"
	case errors.Is(err, formdesign.ErrVersionIDRequired):
		return "version_id is required for optimistic locking"
	case errors.Is(err, formdesign.ErrVersionConflict):
		return "Record has been modified or deleted by another user. Please refresh and try again."
	case errors.Is(err, formdesign.ErrVersionMismatch):
		return "Version mismatch. Please refresh and try again."
	case errors.Is(err, formdesign.ErrSectionNameRequired):
		return "Section name is required"
	case errors.Is(err, formdesign.ErrFormLinkedWorkflow):
		return "This form cannot be deleted because it is linked to a workflow."
	default:
		return err.Error()
	}
}
