package bulkupload

import (
	"io"
	"strings"
	"time"

	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
	"github.com/fisker/nexforms-backend/pkg/metrics"
)

// UploadResult 批量导入的整体结果
type UploadResult struct {
	Status         string      `json:"status"`
	Message        string      `json:"message"`
	TotalProcessed int         `json:"total_processed,omitempty"`
	TotalSuccess   int         `json:"total_success,omitempty"`
	TotalErrors    int         `json:"total_errors"`
	Successes      []string    `json:"successes,omitempty"`
	Errors         interface{} `json:"errors,omitempty"`
	CreatedForms   []*FormInfo `json:"created_forms,omitempty"`
}

// Service 表单批量导入服务：解析 Excel、穷尽校验、逐表单事务创建
type Service struct {
	formRepo      *repository.FormRepository
	formTypeRepo  *repository.FormTypeRepository
	fieldTypeRepo *repository.FieldTypeRepository
}

func NewService(formRepo *repository.FormRepository, formTypeRepo *repository.FormTypeRepository, fieldTypeRepo *repository.FieldTypeRepository) *Service {
	return &Service{
		formRepo:      formRepo,
		formTypeRepo:  formTypeRepo,
		fieldTypeRepo: fieldTypeRepo,
	}
}

// ProcessUpload 处理上传的 Excel 文件，返回导入结果
// 校验失败时不创建任何数据；校验通过后逐表单独立事务创建，
// 单个表单失败不影响其它表单
func (s *Service) ProcessUpload(file io.Reader, filename, username string) *UploadResult {
	start := time.Now()

	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		metrics.BulkUploadsTotal.WithLabelValues("failed").Inc()
		return &UploadResult{
			Status:  "failed",
			Message: "Unsupported file format. Please upload Excel file (.xlsx or .xls).",
		}
	}

	data, err := ParseWorkbook(file)
	if err != nil {
		logger.Sugar.Errorf("解析批量导入文件失败: %v", err)
		metrics.BulkUploadsTotal.WithLabelValues("failed").Inc()
		return &UploadResult{
			Status:  "failed",
			Message: "Error processing file: " + err.Error() + ". Please contact administrator.",
		}
	}

	if len(data.Forms) == 0 {
		metrics.BulkUploadsTotal.WithLabelValues("failed").Inc()
		return &UploadResult{
			Status:  "failed",
			Message: "No forms found in the Forms sheet.",
		}
	}

	// 校验阶段：收集库内快照后对三张表做穷尽校验
	lookups, err := s.buildLookups()
	if err != nil {
		logger.Sugar.Errorf("加载校验基础数据失败: %v", err)
		metrics.BulkUploadsTotal.WithLabelValues("failed").Inc()
		return &UploadResult{
			Status:  "failed",
			Message: "Error processing file: " + err.Error() + ". Please contact administrator.",
		}
	}

	validationErrors := ValidateAllSheets(data, lookups)
	if len(validationErrors) > 0 {
		logger.Sugar.Infof("批量导入校验未通过，共 %d 条错误", len(validationErrors))
		for _, ve := range validationErrors {
			metrics.BulkUploadValidationErrors.WithLabelValues(ve.Type).Inc()
		}
		metrics.BulkUploadsTotal.WithLabelValues("failed").Inc()
		return &UploadResult{
			Status:      "failed",
			Message:     "Validation failed. Please fix the errors below and re-upload the file.",
			Errors:      validationErrors,
			TotalErrors: len(validationErrors),
		}
	}

	// 处理阶段：逐表单创建
	var successes, errorMessages []string
	var createdForms []*FormInfo

	for _, formData := range data.Forms {
		result := s.createSingleForm(formData, data, username)
		if result.Status == "success" {
			successes = append(successes, result.Message)
			createdForms = append(createdForms, result.FormInfo)
			metrics.BulkUploadFormsCreated.Inc()
		} else {
			errorMessages = append(errorMessages, result.Message)
		}
	}

	status := "success"
	if len(errorMessages) > 0 {
		status = "partial_success"
	}
	metrics.BulkUploadsTotal.WithLabelValues(status).Inc()
	metrics.BulkUploadDuration.Observe(time.Since(start).Seconds())

	logger.Sugar.Infof("批量导入完成: 共 %d 个表单, 成功 %d, 失败 %d",
		len(data.Forms), len(successes), len(errorMessages))

	return &UploadResult{
		Status:         status,
		Message:        "Bulk upload for forms processed.",
		TotalProcessed: len(data.Forms),
		TotalSuccess:   len(successes),
		TotalErrors:    len(errorMessages),
		Successes:      successes,
		Errors:         errorMessages,
		CreatedForms:   createdForms,
	}
}

// buildLookups 从数据库抓取校验所需的快照
func (s *Service) buildLookups() (*Lookups, error) {
	formTypeMap, err := s.formTypeRepo.ActiveNameMap()
	if err != nil {
		return nil, err
	}
	formTypes := make([]string, 0, len(formTypeMap))
	for name := range formTypeMap {
		formTypes = append(formTypes, name)
	}

	fieldTypeDataType, err := s.fieldTypeRepo.FieldTypeDataTypeMap()
	if err != nil {
		return nil, err
	}
	fieldTypes := make([]string, 0, len(fieldTypeDataType))
	for name := range fieldTypeDataType {
		fieldTypes = append(fieldTypes, name)
	}

	dataTypes, err := s.fieldTypeRepo.ListDataTypes()
	if err != nil {
		return nil, err
	}
	dataTypeNames := make([]string, 0, len(dataTypes))
	for _, dt := range dataTypes {
		dataTypeNames = append(dataTypeNames, dt.Name)
	}

	titles, err := s.formRepo.ActiveTitleSet()
	if err != nil {
		return nil, err
	}

	return &Lookups{
		FormTypes:          formTypes,
		FieldTypes:         fieldTypes,
		DataTypes:          dataTypeNames,
		FieldTypeDataType:  fieldTypeDataType,
		ExistingFormTitles: titles,
	}, nil
}
