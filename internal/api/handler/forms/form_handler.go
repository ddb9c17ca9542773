package forms

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/formdesign"
)

type FormHandler struct {
	service *formdesign.Service
}

func NewFormHandler(service *formdesign.Service) *FormHandler {
	return &FormHandler{service: service}
}

// listParams 解析表单列表的查询参数
func listParams(c *gin.Context) *formdesign.ListFormsParams {
	params := &formdesign.ListFormsParams{
		Search:       strings.TrimSpace(c.Query("search")),
		FormTypeID:   c.Query("form_type_id"),
		FormTypeName: c.Query("form_type_name"),
		MainProcess:  c.Query("main_process"),
		Criteria:     c.Query("criteria"),
		Location:     c.Query("location"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page_number", "1")); err == nil && page > 0 {
		params.PageNumber = page
	} else {
		params.PageNumber = 1
	}
	// is_completed 默认只看已完成的表单，传非法值则不过滤
	switch strings.ToLower(c.DefaultQuery("is_completed", "true")) {
	case "true":
		completed := true
		params.IsCompleted = &completed
	case "false":
		completed := false
		params.IsCompleted = &completed
	}
	return params
}

// List 分页获取动态表单（每谱系只取最新版本）
// GET /api/form/get
func (h *FormHandler) List(c *gin.Context) {
	params := listParams(c)
	page, err := h.service.ListForms(params)
	if err != nil {
		// 类型/分类过滤条件无法解析时返回空页
		switch {
		case errors.Is(err, formdesign.ErrFormTypeNotFound):
			c.JSON(http.StatusNotFound, model.Response{Code: 404, Message: "FormType not found", Data: page})
		case errors.Is(err, formdesign.ErrMainProcessNotFound):
			c.JSON(http.StatusNotFound, model.Response{Code: 404, Message: "Main process not found", Data: page})
		case errors.Is(err, formdesign.ErrCriteriaNotFound):
			c.JSON(http.StatusNotFound, model.Response{Code: 404, Message: "Criteria not found", Data: page})
		default:
			model.HandleError(c, http.StatusInternalServerError, err, "Error retrieving forms")
		}
		return
	}
	respond(c, http.StatusOK, "Forms retrieved successfully", page)
}

// ListAll 获取全部最新版本表单（不分页，带版本历史）
// GET /api/form/list
func (h *FormHandler) ListAll(c *gin.Context) {
	params := listParams(c)
	forms, err := h.service.FormsList(params)
	if err != nil {
		handleServiceError(c, err, "Error retrieving forms")
		return
	}
	respond(c, http.StatusOK, "Forms retrieved successfully", forms)
}

// Create 创建动态表单（同时初始化空草稿）
// POST /api/form/create
func (h *FormHandler) Create(c *gin.Context) {
	var input formdesign.CreateFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "title and type_id are required"))
		return
	}

	form, err := h.service.CreateForm(&input, currentUsername(c))
	if err != nil {
		handleServiceError(c, err, "Error creating form")
		return
	}

	data, err := h.service.FormDetail(form.ID)
	if err != nil {
		handleServiceError(c, err, "Error creating form")
		return
	}
	data["form_id"] = form.ID
	respond(c, http.StatusCreated, "Dynamic form created successfully", data)
}

// Detail 按业务编码或 UUID 获取表单详情
// GET /api/form/:pk
func (h *FormHandler) Detail(c *gin.Context) {
	data, err := h.service.FormDetail(c.Param("pk"))
	if err != nil {
		handleServiceError(c, err, "Error retrieving form")
		return
	}
	respond(c, http.StatusOK, "Form retrieved successfully", data)
}

// Delete 软删除表单，已挂接工作流时拒绝
// DELETE /api/form/delete/:pk
func (h *FormHandler) Delete(c *gin.Context) {
	err := h.service.DeleteForm(c.Param("pk"))
	if err != nil {
		if errors.Is(err, formdesign.ErrFormNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "Form not found."))
			return
		}
		handleServiceError(c, err, "Error deleting form")
		return
	}
	respond(c, http.StatusOK, "Form and related data deleted successfully.", nil)
}

// ByType 按类型取已完成表单，type 支持业务编码/UUID/名称
// GET /api/form/by_type
func (h *FormHandler) ByType(c *gin.Context) {
	typeParam := c.Query("type")
	search := strings.TrimSpace(c.Query("search"))

	forms, err := h.service.FormsByType(typeParam, search)
	if err != nil {
		if errors.Is(err, formdesign.ErrFormTypeNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "No FormType found for '"+typeParam+"'"))
			return
		}
		handleServiceError(c, err, "Error retrieving forms")
		return
	}
	respond(c, http.StatusOK, "Forms retrieved successfully", forms)
}

// WithSections 获取带节列表的表单（跳过没有节的表单）
// GET /api/form/with_sections
func (h *FormHandler) WithSections(c *gin.Context) {
	forms, err := h.service.FormsWithSections(strings.TrimSpace(c.Query("search")))
	if err != nil {
		handleServiceError(c, err, "Error retrieving forms")
		return
	}
	respond(c, http.StatusOK, "Forms retrieved successfully", forms)
}
