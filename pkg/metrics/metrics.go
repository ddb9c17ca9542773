package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Server Metrics

	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Bulk Upload Metrics

	// BulkUploadsTotal 批量导入请求总数，按最终状态统计
	BulkUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_uploads_total",
			Help: "Total number of bulk upload requests by final status",
		},
		[]string{"status"},
	)

	// BulkUploadFormsCreated 批量导入成功创建的表单总数
	BulkUploadFormsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulk_upload_forms_created_total",
			Help: "Total number of forms created via bulk upload",
		},
	)

	// BulkUploadValidationErrors 批量导入校验错误总数，按错误类型统计
	BulkUploadValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_upload_validation_errors_total",
			Help: "Total number of bulk upload validation errors by type",
		},
		[]string{"type"},
	)

	// BulkUploadDuration 批量导入处理时长
	BulkUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bulk_upload_duration_seconds",
			Help:    "Bulk upload processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Form Versioning Metrics

	// FormVersionForksTotal 表单版本分叉次数
	FormVersionForksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_version_forks_total",
			Help: "Total number of form version forks",
		},
	)

	// FormDraftSavesTotal 表单草稿保存次数
	FormDraftSavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_draft_saves_total",
			Help: "Total number of form draft saves",
		},
	)

	// FormExportsTotal 表单导出次数
	FormExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_exports_total",
			Help: "Total number of form exports",
		},
	)
)
