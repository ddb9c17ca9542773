package forms

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/api/middleware"
	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/catalog"
)

type FieldTypeHandler struct {
	service *catalog.FieldTypeService
}

func NewFieldTypeHandler(service *catalog.FieldTypeService) *FieldTypeHandler {
	return &FieldTypeHandler{service: service}
}

// List 获取字段类型列表
// GET /api/field_types
func (h *FieldTypeHandler) List(c *gin.Context) {
	result, err := h.service.ListFieldTypes()
	if err != nil {
		handleServiceError(c, err, "Error retrieving field types")
		return
	}
	respond(c, http.StatusOK, "Field types retrieved successfully", result)
}

// Save 创建字段类型，携带 field_type_id 时更新已有记录
// POST /api/field_types/create
func (h *FieldTypeHandler) Save(c *gin.Context) {
	var input catalog.FieldTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, created, err := h.service.SaveFieldType(input)
	if err != nil {
		handleServiceError(c, err, "Error creating/updating field type")
		return
	}
	middleware.InvalidateCache("/api/field_types")
	if created {
		respond(c, http.StatusCreated, "Field type created successfully", result)
		return
	}
	respond(c, http.StatusOK, "Field type updated successfully", result)
}

// Update 按 ID 更新字段类型
// PUT/PATCH /api/field_types/update/:pk
func (h *FieldTypeHandler) Update(c *gin.Context) {
	var input catalog.FieldTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, err := h.service.UpdateFieldType(c.Param("pk"), input)
	if err != nil {
		handleServiceError(c, err, "Error updating field type")
		return
	}
	middleware.InvalidateCache("/api/field_types")
	respond(c, http.StatusOK, "Field type updated successfully", result)
}

// Delete 按 ID 软删除字段类型
// DELETE /api/field_types/delete/:pk
func (h *FieldTypeHandler) Delete(c *gin.Context) {
	result, err := h.service.DeleteFieldType(c.Param("pk"))
	if err != nil {
		handleServiceError(c, err, "Error deleting field type")
		return
	}
	middleware.InvalidateCache("/api/field_types")
	respond(c, http.StatusOK, "Field type deleted successfully", result)
}
