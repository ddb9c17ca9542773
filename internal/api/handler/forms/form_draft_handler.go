package forms

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/formdesign"
)

// FormDraftHandler 表单设计器的草稿读写
type FormDraftHandler struct {
	service *formdesign.Service
}

func NewFormDraftHandler(service *formdesign.Service) *FormDraftHandler {
	return &FormDraftHandler{service: service}
}

// Get 获取表单草稿，version 参数可选（取谱系内指定版本）
// GET /api/form_draft/get/:form_id
func (h *FormDraftHandler) Get(c *gin.Context) {
	var version *int
	if versionStr := c.Query("version"); versionStr != "" {
		v, err := strconv.Atoi(versionStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Error(400, "Invalid version number"))
			return
		}
		version = &v
	}

	data, err := h.service.GetFormDraft(c.Param("form_id"), version)
	if err != nil {
		handleServiceError(c, err, "Error retrieving form draft")
		return
	}
	respond(c, http.StatusOK, "Form draft retrieved successfully", data)
}

// Save 保存表单草稿
// 表单已挂接工作流时分叉出 is_completed=false 的新版本
// POST /api/form_draft/save/:form_id
func (h *FormDraftHandler) Save(c *gin.Context) {
	var input formdesign.SaveDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}

	result, err := h.service.SaveFormDraft(c.Param("form_id"), &input, currentUsername(c))
	if err != nil {
		handleServiceError(c, err, "Error saving form draft")
		return
	}

	if result.NewVersion {
		respond(c, http.StatusCreated, "Form is linked to a workflow. Created new draft version.", result)
		return
	}
	respond(c, http.StatusOK, "Form draft saved successfully", result)
}
