package forms

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/api/middleware"
	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/catalog"
)

type DataTypeHandler struct {
	service *catalog.FieldTypeService
}

func NewDataTypeHandler(service *catalog.FieldTypeService) *DataTypeHandler {
	return &DataTypeHandler{service: service}
}

// List 获取数据类型列表
// GET /api/data_types
func (h *DataTypeHandler) List(c *gin.Context) {
	result, err := h.service.ListDataTypes()
	if err != nil {
		handleServiceError(c, err, "Error retrieving data types")
		return
	}
	respond(c, http.StatusOK, "Data types retrieved successfully", result)
}

// Create 创建数据类型
// POST /api/data_types/create
func (h *DataTypeHandler) Create(c *gin.Context) {
	var input catalog.DataTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, err := h.service.CreateDataType(input)
	if err != nil {
		handleServiceError(c, err, "Error creating data type")
		return
	}
	middleware.InvalidateCache("/api/data_types")
	respond(c, http.StatusCreated, "Data type created successfully", result)
}

// Update 更新数据类型
// PUT/PATCH /api/data_types/:pk/update
func (h *DataTypeHandler) Update(c *gin.Context) {
	var input catalog.DataTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, err := h.service.UpdateDataType(c.Param("pk"), input)
	if err != nil {
		handleServiceError(c, err, "Error updating data type")
		return
	}
	middleware.InvalidateCache("/api/data_types")
	respond(c, http.StatusOK, "Data type updated successfully", result)
}

// Delete 删除数据类型，被字段类型引用时返回400
// DELETE /api/data_types/:pk/delete
func (h *DataTypeHandler) Delete(c *gin.Context) {
	result, err := h.service.DeleteDataType(c.Param("pk"))
	if err != nil {
		handleServiceError(c, err, "Error deleting data type")
		return
	}
	middleware.InvalidateCache("/api/data_types")
	respond(c, http.StatusOK, "Data type deleted successfully", result)
}
