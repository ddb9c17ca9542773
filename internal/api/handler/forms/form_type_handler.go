package forms

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/api/middleware"
	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/catalog"
)

type FormTypeHandler struct {
	service *catalog.FormTypeService
}

func NewFormTypeHandler(service *catalog.FormTypeService) *FormTypeHandler {
	return &FormTypeHandler{service: service}
}

// List 获取表单类型列表
// page/page_size 任一给定或 source=dropdown 时返回分页结构
// GET /api/form_types
func (h *FormTypeHandler) List(c *gin.Context) {
	params := catalog.FormTypeListParams{
		Search:  c.Query("search"),
		OrderBy: c.DefaultQuery("order_by", "name"),
		Source:  c.Query("source"),
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			params.Page = &page
		}
	}
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil {
			params.PageSize = &size
		}
	}

	data, pagination, err := h.service.List(params)
	if err != nil {
		handleServiceError(c, err, "Error retrieving form types")
		return
	}

	if pagination != nil {
		respond(c, http.StatusOK, "Form types retrieved successfully", gin.H{
			"form_types": data,
			"pagination": pagination,
		})
		return
	}
	respond(c, http.StatusOK, "Form types retrieved successfully", data)
}

// Create 创建表单类型
// POST /api/form_types/create
func (h *FormTypeHandler) Create(c *gin.Context) {
	var input catalog.FormTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Name is required"))
		return
	}

	result, err := h.service.Create(input, currentUsername(c))
	if err != nil {
		handleServiceError(c, err, "Error creating form type")
		return
	}
	middleware.InvalidateCache("/api/form_types")
	respond(c, http.StatusCreated, fmt.Sprintf("FormType '%s' created successfully", input.Name), result)
}

// Detail 按业务编码获取表单类型详情
// GET /api/form_types/:pk
func (h *FormTypeHandler) Detail(c *gin.Context) {
	result, err := h.service.GetByCode(c.Param("pk"))
	if err != nil {
		handleServiceError(c, err, "Error retrieving form type")
		return
	}
	respond(c, http.StatusOK, "FormType retrieved successfully", result)
}

// Update 按业务编码更新表单类型
// PUT/PATCH /api/form_types/:pk/update
func (h *FormTypeHandler) Update(c *gin.Context) {
	var input catalog.FormTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, err := h.service.Update(c.Param("pk"), input)
	if err != nil {
		handleServiceError(c, err, "Error updating form type")
		return
	}
	middleware.InvalidateCache("/api/form_types")
	respond(c, http.StatusOK, "FormType updated successfully", result)
}

// Delete 按业务编码软删除表单类型
// DELETE /api/form_types/:pk/delete
func (h *FormTypeHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Param("pk"))
	if err != nil {
		handleServiceError(c, err, "Error deleting form type")
		return
	}
	middleware.InvalidateCache("/api/form_types")
	deleted := result.(map[string]interface{})
	respond(c, http.StatusOK, fmt.Sprintf("FormType with ID %v deleted successfully", deleted["id"]), result)
}
