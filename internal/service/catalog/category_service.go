package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
)

// CategoryService 表单分类维护（主流程 / 关注领域 / 准则）
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func serializeCategory(id, name string) map[string]interface{} {
	return map[string]interface{}{"id": id, "name": name}
}

// ---------- MainProcess ----------

func (s *CategoryService) ListMainProcesses() (interface{}, error) {
	items, err := s.repo.ListMainProcesses()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, serializeCategory(item.ID, item.Name))
	}
	return out, nil
}

func (s *CategoryService) CreateMainProcess(input CategoryInput, username string) (interface{}, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindMainProcessByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryNameTaken
	}

	item := &model.MainProcess{Name: name}
	item.CreatedBy = username
	if err := s.repo.CreateMainProcess(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) GetMainProcess(id string) (interface{}, error) {
	item, err := s.repo.FindMainProcessByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) UpdateMainProcess(id string, input CategoryInput) (interface{}, error) {
	item, err := s.repo.FindMainProcessByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindMainProcessByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != item.ID {
		return nil, ErrCategoryNameTaken
	}

	item.Name = name
	if err := s.repo.UpdateMainProcess(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) DeleteMainProcess(id string) (interface{}, error) {
	item, err := s.repo.FindMainProcessByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.repo.DeleteMainProcess(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

// ---------- FocusArea ----------

func (s *CategoryService) ListFocusAreas() (interface{}, error) {
	items, err := s.repo.ListFocusAreas()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, serializeCategory(item.ID, item.Name))
	}
	return out, nil
}

func (s *CategoryService) CreateFocusArea(input CategoryInput, username string) (interface{}, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindFocusAreaByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryNameTaken
	}

	item := &model.FocusArea{Name: name}
	item.CreatedBy = username
	if err := s.repo.CreateFocusArea(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) GetFocusArea(id string) (interface{}, error) {
	item, err := s.repo.FindFocusAreaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) UpdateFocusArea(id string, input CategoryInput) (interface{}, error) {
	item, err := s.repo.FindFocusAreaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindFocusAreaByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != item.ID {
		return nil, ErrCategoryNameTaken
	}

	item.Name = name
	if err := s.repo.UpdateFocusArea(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) DeleteFocusArea(id string) (interface{}, error) {
	item, err := s.repo.FindFocusAreaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.repo.DeleteFocusArea(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

// ---------- Criteria ----------

func (s *CategoryService) ListCriteria() (interface{}, error) {
	items, err := s.repo.ListCriteria()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, serializeCategory(item.ID, item.Name))
	}
	return out, nil
}

func (s *CategoryService) CreateCriteria(input CategoryInput, username string) (interface{}, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindCriteriaByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryNameTaken
	}

	item := &model.Criteria{Name: name}
	item.CreatedBy = username
	if err := s.repo.CreateCriteria(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) GetCriteria(id string) (interface{}, error) {
	item, err := s.repo.FindCriteriaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) UpdateCriteria(id string, input CategoryInput) (interface{}, error) {
	item, err := s.repo.FindCriteriaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	existing, err := s.repo.FindCriteriaByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != item.ID {
		return nil, ErrCategoryNameTaken
	}

	item.Name = name
	if err := s.repo.UpdateCriteria(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}

func (s *CategoryService) DeleteCriteria(id string) (interface{}, error) {
	item, err := s.repo.FindCriteriaByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.repo.DeleteCriteria(item); err != nil {
		return nil, err
	}
	return serializeCategory(item.ID, item.Name), nil
}
