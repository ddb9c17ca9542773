package forms

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/service/catalog"
)

// CategoryHandler 主流程 / 关注领域 / 准则 三类表单分类的维护入口
type CategoryHandler struct {
	service *catalog.CategoryService
}

func NewCategoryHandler(service *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryError 分类接口的错误出口，带实体名的文案
func categoryError(c *gin.Context, err error, entity, action string) {
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, model.Error(404, entity+" not found"))
		return
	}
	if errors.Is(err, catalog.ErrCategoryNameTaken) {
		c.JSON(http.StatusBadRequest, model.Error(400, entity+" with this name already exists"))
		return
	}
	if errors.Is(err, catalog.ErrNameRequired) {
		c.JSON(http.StatusBadRequest, model.Error(400, "Name cannot be empty"))
		return
	}
	model.HandleError(c, http.StatusInternalServerError, err, "Error "+action+" "+entity)
}

// ---------- MainProcess ----------

// ListMainProcesses GET /api/main_processes
func (h *CategoryHandler) ListMainProcesses(c *gin.Context) {
	result, err := h.service.ListMainProcesses()
	if err != nil {
		categoryError(c, err, "Main process", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Main processes retrieved successfully", result)
}

// CreateMainProcess POST /api/main_processes/create
func (h *CategoryHandler) CreateMainProcess(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.CreateMainProcess(input, currentUsername(c))
	if err != nil {
		categoryError(c, err, "Main process", "creating")
		return
	}
	respond(c, http.StatusCreated, "Main process created successfully", result)
}

// GetMainProcess GET /api/main_processes/:pk
func (h *CategoryHandler) GetMainProcess(c *gin.Context) {
	result, err := h.service.GetMainProcess(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Main process", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Main process retrieved successfully", result)
}

// UpdateMainProcess PUT/PATCH /api/main_processes/:pk/update
func (h *CategoryHandler) UpdateMainProcess(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.UpdateMainProcess(c.Param("pk"), input)
	if err != nil {
		categoryError(c, err, "Main process", "updating")
		return
	}
	respond(c, http.StatusOK, "Main process updated successfully", result)
}

// DeleteMainProcess DELETE /api/main_processes/:pk/delete
func (h *CategoryHandler) DeleteMainProcess(c *gin.Context) {
	result, err := h.service.DeleteMainProcess(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Main process", "deleting")
		return
	}
	respond(c, http.StatusOK, "Main process deleted successfully", result)
}

// ---------- FocusArea ----------

// ListFocusAreas GET /api/focus_areas
func (h *CategoryHandler) ListFocusAreas(c *gin.Context) {
	result, err := h.service.ListFocusAreas()
	if err != nil {
		categoryError(c, err, "Focus area", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Focus areas retrieved successfully", result)
}

// CreateFocusArea POST /api/focus_areas/create
func (h *CategoryHandler) CreateFocusArea(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.CreateFocusArea(input, currentUsername(c))
	if err != nil {
		categoryError(c, err, "Focus area", "creating")
		return
	}
	respond(c, http.StatusCreated, "Focus area created successfully", result)
}

// GetFocusArea GET /api/focus_areas/:pk
func (h *CategoryHandler) GetFocusArea(c *gin.Context) {
	result, err := h.service.GetFocusArea(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Focus area", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Focus area retrieved successfully", result)
}

// UpdateFocusArea PUT/PATCH /api/focus_areas/:pk/update
func (h *CategoryHandler) UpdateFocusArea(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.UpdateFocusArea(c.Param("pk"), input)
	if err != nil {
		categoryError(c, err, "Focus area", "updating")
		return
	}
	respond(c, http.StatusOK, "Focus area updated successfully", result)
}

// DeleteFocusArea DELETE /api/focus_areas/:pk/delete
func (h *CategoryHandler) DeleteFocusArea(c *gin.Context) {
	result, err := h.service.DeleteFocusArea(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Focus area", "deleting")
		return
	}
	respond(c, http.StatusOK, "Focus area deleted successfully", result)
}

// ---------- Criteria ----------

// ListCriteria GET /api/criteria
func (h *CategoryHandler) ListCriteria(c *gin.Context) {
	result, err := h.service.ListCriteria()
	if err != nil {
		categoryError(c, err, "Criteria", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Criteria retrieved successfully", result)
}

// CreateCriteria POST /api/criteria/create
func (h *CategoryHandler) CreateCriteria(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.CreateCriteria(input, currentUsername(c))
	if err != nil {
		categoryError(c, err, "Criteria", "creating")
		return
	}
	respond(c, http.StatusCreated, "Criteria created successfully", result)
}

// GetCriteria GET /api/criteria/:pk
func (h *CategoryHandler) GetCriteria(c *gin.Context) {
	result, err := h.service.GetCriteria(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Criteria", "retrieving")
		return
	}
	respond(c, http.StatusOK, "Criteria retrieved successfully", result)
}

// UpdateCriteria PUT/PATCH /api/criteria/:pk/update
func (h *CategoryHandler) UpdateCriteria(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "Validation failed"))
		return
	}
	result, err := h.service.UpdateCriteria(c.Param("pk"), input)
	if err != nil {
		categoryError(c, err, "Criteria", "updating")
		return
	}
	respond(c, http.StatusOK, "Criteria updated successfully", result)
}

// DeleteCriteria DELETE /api/criteria/:pk/delete
func (h *CategoryHandler) DeleteCriteria(c *gin.Context) {
	result, err := h.service.DeleteCriteria(c.Param("pk"))
	if err != nil {
		categoryError(c, err, "Criteria", "deleting")
		return
	}
	respond(c, http.StatusOK, "Criteria deleted successfully", result)
}
