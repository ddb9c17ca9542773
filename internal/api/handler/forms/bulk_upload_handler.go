package forms

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/internal/service/bulkupload"
	"github.com/fisker/nexforms-backend/pkg/config"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BulkUploadHandler Excel 批量导入、模板下载与数据导出
type BulkUploadHandler struct {
	service *bulkupload.Service
}

func NewBulkUploadHandler(service *bulkupload.Service) *BulkUploadHandler {
	return &BulkUploadHandler{service: service}
}

// Upload 处理批量导入文件
// 结果 status 为 failed 时返回 400，其余（success/partial_success）返回 200
// POST /api/form/bulk/upload
func (h *BulkUploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "failed", "message": "No file uploaded"})
		return
	}

	if cfg := config.GlobalConfig; cfg != nil {
		if fileHeader.Size > cfg.Upload.MaxSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "failed",
				"message": "File too large",
			})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		allowed := false
		for _, e := range cfg.Upload.AllowedExtensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "failed",
				"message": "Unsupported file format. Please upload Excel file (.xlsx or .xls).",
			})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "failed",
			"message": "Error processing file. Please contact administrator.",
		})
		return
	}
	defer file.Close()

	result := h.service.ProcessUpload(file, fileHeader.Filename, currentUsername(c))
	if result.Status == "failed" {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadTemplate 生成并下载批量导入模板
// GET /api/form/bulk/template/download
func (h *BulkUploadHandler) DownloadTemplate(c *gin.Context) {
	data, err := h.service.GenerateTemplate()
	if err != nil {
		handleServiceError(c, err, "Error generating template")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="Forms_Bulk_Upload_Template.xlsx"`)
	c.Data(http.StatusOK, excelContentType, data)
}

// Export 导出全部最新版本表单为 Excel（与导入模板同构，可回导）
// GET /api/form/bulk/export
func (h *BulkUploadHandler) Export(c *gin.Context) {
	data, filename, err := h.service.ExportForms()
	if err != nil {
		if errors.Is(err, bulkupload.ErrNoFormsToExport) {
			c.JSON(http.StatusNotFound, gin.H{"status": "failed", "message": "No forms found to export."})
			return
		}
		handleServiceError(c, err, "Error exporting forms")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, excelContentType, data)
}
