package catalog

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
)

// FormTypeService 表单类型目录维护
type FormTypeService struct {
	repo *repository.FormTypeRepository
}

func NewFormTypeService(repo *repository.FormTypeRepository) *FormTypeService {
	return &FormTypeService{repo: repo}
}

// formTypeOrderColumns 允许排序的列，防止排序参数注入
var formTypeOrderColumns = map[string]bool{
	"name":        true,
	"created_on":  true,
	"unique_code": true,
}

// orderClause 把 "-name" 风格的排序参数转成 SQL 排序子句
func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	col := strings.TrimPrefix(orderBy, "-")
	if !formTypeOrderColumns[col] {
		col = "name"
		desc = false
	}
	if desc {
		return col + " DESC"
	}
	return col
}

// List 查询表单类型，page/page_size 任一给定或 source=dropdown 时分页
func (s *FormTypeService) List(params FormTypeListParams) (interface{}, *model.Pagination, error) {
	order := orderClause(params.OrderBy)
	usePagination := params.Page != nil || params.PageSize != nil || params.Source == "dropdown"

	if !usePagination {
		formTypes, err := s.repo.List(params.Search, order)
		if err != nil {
			return nil, nil, err
		}
		names, err := s.activeNameByID()
		if err != nil {
			return nil, nil, err
		}
		return serializeFormTypeList(formTypes, names), nil, nil
	}

	page := 1
	if params.Page != nil && *params.Page > 0 {
		page = *params.Page
	}
	pageSize := defaultPageSize
	if params.Source == "dropdown" {
		pageSize = dropdownPageSize
	} else if params.PageSize != nil && *params.PageSize > 0 {
		pageSize = *params.PageSize
	}

	formTypes, total, err := s.repo.ListPaginated(params.Search, order, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	// 页码越界时退回最后一页
	if page > totalPages && totalPages > 0 {
		page = totalPages
		formTypes, total, err = s.repo.ListPaginated(params.Search, order, page, pageSize)
		if err != nil {
			return nil, nil, err
		}
	}
	if totalPages == 0 {
		page = 1
	}

	names, err := s.activeNameByID()
	if err != nil {
		return nil, nil, err
	}
	pagination := &model.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalRecords: total,
		PageSize:     pageSize,
	}
	return serializeFormTypeList(formTypes, names), pagination, nil
}

// Create 创建表单类型
func (s *FormTypeService) Create(input FormTypeInput, username string) (interface{}, error) {
	name, err := s.validateName(input.Name, "")
	if err != nil {
		return nil, err
	}

	ft := &model.FormType{Name: name}
	ft.CreatedBy = username
	if input.Description != nil {
		ft.Description = *input.Description
	}
	if input.ParentFormTypeID != nil && *input.ParentFormTypeID != "" {
		parent, err := s.repo.FindActiveByID(*input.ParentFormTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentFormTypeNotFound
			}
			return nil, err
		}
		ft.ParentFormTypeID = &parent.ID
	}

	if err := s.repo.Create(ft); err != nil {
		logger.Sugar.Errorf("create form type %q: %v", name, err)
		return nil, err
	}
	return s.serializeFull(ft)
}

// GetByCode 按 unique_code 查询当前有效版本
func (s *FormTypeService) GetByCode(code string) (interface{}, error) {
	ft, err := s.repo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormTypeNotFound
		}
		return nil, err
	}
	return s.serializeFull(ft)
}

// Update 按 unique_code 更新当前有效版本
func (s *FormTypeService) Update(code string, input FormTypeInput) (interface{}, error) {
	ft, err := s.repo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormTypeNotFound
		}
		return nil, err
	}

	name, err := s.validateName(input.Name, ft.ID)
	if err != nil {
		return nil, err
	}
	ft.Name = name
	if input.Description != nil {
		ft.Description = *input.Description
	}
	if input.ParentFormTypeID != nil {
		if *input.ParentFormTypeID == "" {
			ft.ParentFormTypeID = nil
		} else {
			if *input.ParentFormTypeID == ft.ID {
				return nil, ErrFormTypeSelfParent
			}
			parent, err := s.repo.FindActiveByID(*input.ParentFormTypeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrParentFormTypeNotFound
				}
				return nil, err
			}
			ft.ParentFormTypeID = &parent.ID
		}
	}

	if err := s.repo.Update(ft); err != nil {
		return nil, err
	}
	return s.serializeFull(ft)
}

// Delete 按 unique_code 软删除，被表单或子类型引用时拒绝
func (s *FormTypeService) Delete(code string) (interface{}, error) {
	ft, err := s.repo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormTypeNotFound
		}
		return nil, err
	}

	inUse, err := s.repo.HasActiveForms(ft.ID)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrFormTypeInUse
	}
	hasSubTypes, err := s.repo.HasActiveSubTypes(ft.ID)
	if err != nil {
		return nil, err
	}
	if hasSubTypes {
		return nil, ErrFormTypeHasSubTypes
	}

	if err := s.repo.SoftDelete(ft); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": ft.ID, "name": ft.Name}, nil
}

// validateName 校验名称非空、长度和有效版本内的唯一性
func (s *FormTypeService) validateName(name, excludeID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrFormTypeNameRequired
	}
	if len(name) > 100 {
		return "", ErrFormTypeNameTooLong
	}
	existing, err := s.repo.FindActiveByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if existing != nil && existing.ID != excludeID {
		return "", ErrFormTypeNameTaken
	}
	return name, nil
}

func (s *FormTypeService) activeNameByID() (map[string]string, error) {
	formTypes, err := s.repo.List("", "name")
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(formTypes))
	for _, ft := range formTypes {
		m[ft.ID] = ft.Name
	}
	return m, nil
}

// serializeFormTypeList 列表视图：id 暴露业务编码，version_id 暴露行主键
func serializeFormTypeList(formTypes []model.FormType, parentNames map[string]string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(formTypes))
	for _, ft := range formTypes {
		var parent interface{}
		if ft.ParentFormTypeID != nil {
			if name, ok := parentNames[*ft.ParentFormTypeID]; ok {
				parent = name
			}
		}
		out = append(out, map[string]interface{}{
			"id":               ft.UniqueCode,
			"version_id":       ft.ID,
			"name":             ft.Name,
			"parent_form_type": parent,
		})
	}
	return out
}

func (s *FormTypeService) serializeFull(ft *model.FormType) (map[string]interface{}, error) {
	var parentID, parentName interface{}
	if ft.ParentFormTypeID != nil {
		parent, err := s.repo.FindActiveByID(*ft.ParentFormTypeID)
		if err == nil {
			parentID = parent.ID
			parentName = parent.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	var endDate interface{}
	if ft.EffectiveEndDate != nil {
		endDate = ft.EffectiveEndDate.Format(timeLayout)
	}
	return map[string]interface{}{
		"id":                    ft.UniqueCode,
		"version_id":            ft.ID,
		"unique_code":           ft.UniqueCode,
		"name":                  ft.Name,
		"description":           ft.Description,
		"parent_form_type_id":   parentID,
		"parent_form_type_name": parentName,
		"created_on":            ft.CreatedOn.Format(timeLayout),
		"created_by":            ft.CreatedBy,
		"effective_end_date":    endDate,
		"previous_version_id":   ft.PreviousVersionID,
	}, nil
}
