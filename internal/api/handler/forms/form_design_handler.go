package forms

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/formdesign"
)

// FormDesignHandler 表单结构（节/字段树）的保存与读取
type FormDesignHandler struct {
	service *formdesign.Service
}

func NewFormDesignHandler(service *formdesign.Service) *FormDesignHandler {
	return &FormDesignHandler{service: service}
}

// SaveFields 保存表单的节与字段树
// 表单已挂接工作流时自动分叉出新版本，否则原地重建。
// 原始请求体会整体存为草稿，所以这里手动读 body 再反序列化
// POST /api/form/fields/create/:form_id
func (h *FormDesignHandler) SaveFields(c *gin.Context) {
	formID := c.Param("form_id")
	if formID == "" {
		c.JSON(http.StatusBadRequest, model.Error(400, "Form ID is required"))
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Invalid request body"))
		return
	}

	var input formdesign.SaveFieldsInput
	if err := json.Unmarshal(rawBody, &input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Invalid request body"))
		return
	}

	result, err := h.service.SaveFormFields(formID, &input, rawBody, currentUsername(c))
	if err != nil {
		handleServiceError(c, err, "Error creating form fields")
		return
	}

	if result.NewVersion {
		respond(c, http.StatusCreated, "This form is linked to a workflow, creating a new version and saving fields.", result)
		return
	}
	respond(c, http.StatusOK, "Form fields updated successfully", result)
}

// GetFields 获取表单的节与字段树（嵌套序列化）
// GET /api/form/fields/get/:form_id
func (h *FormDesignHandler) GetFields(c *gin.Context) {
	data, err := h.service.GetFormFields(c.Param("form_id"))
	if err != nil {
		handleServiceError(c, err, "Error retrieving form fields")
		return
	}
	respond(c, http.StatusOK, "Form fields retrieved successfully", data)
}
