package repository

import (
	"time"

	"github.com/fisker/nexforms-backend/internal/model"
	"gorm.io/gorm"
)

// CategoryRepository 管理表单分类（主流程、关注领域、准则）
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ---------- MainProcess ----------

func (r *CategoryRepository) ListMainProcesses() ([]model.MainProcess, error) {
	var items []model.MainProcess
	err := r.db.Where("effective_end_date IS NULL").Order("created_on DESC").Find(&items).Error
	return items, err
}

func (r *CategoryRepository) FindMainProcessByID(id string) (*model.MainProcess, error) {
	var item model.MainProcess
	err := r.db.Where("id = ? AND effective_end_date IS NULL", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) FindMainProcessByNameFold(name string) (*model.MainProcess, error) {
	var item model.MainProcess
	err := r.db.Where("LOWER(name) = LOWER(?) AND effective_end_date IS NULL", name).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) CreateMainProcess(item *model.MainProcess) error {
	if item.ID == "" {
		item.ID = model.NewID()
	}
	if item.UniqueCode == "" {
		item.UniqueCode = model.NewUniqueCode(model.CodePrefixMainProcess)
	}
	return r.db.Create(item).Error
}

func (r *CategoryRepository) UpdateMainProcess(item *model.MainProcess) error {
	return r.db.Save(item).Error
}

func (r *CategoryRepository) DeleteMainProcess(item *model.MainProcess) error {
	item.MarkInactive(time.Now())
	return r.db.Model(item).Update("effective_end_date", item.EffectiveEndDate).Error
}

// ---------- FocusArea ----------

func (r *CategoryRepository) ListFocusAreas() ([]model.FocusArea, error) {
	var items []model.FocusArea
	err := r.db.Where("effective_end_date IS NULL").Order("created_on DESC").Find(&items).Error
	return items, err
}

func (r *CategoryRepository) FindFocusAreaByID(id string) (*model.FocusArea, error) {
	var item model.FocusArea
	err := r.db.Where("id = ? AND effective_end_date IS NULL", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) FindFocusAreaByNameFold(name string) (*model.FocusArea, error) {
	var item model.FocusArea
	err := r.db.Where("LOWER(name) = LOWER(?) AND effective_end_date IS NULL", name).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) CreateFocusArea(item *model.FocusArea) error {
	if item.ID == "" {
		item.ID = model.NewID()
	}
	if item.UniqueCode == "" {
		item.UniqueCode = model.NewUniqueCode(model.CodePrefixFocusArea)
	}
	return r.db.Create(item).Error
}

func (r *CategoryRepository) UpdateFocusArea(item *model.FocusArea) error {
	return r.db.Save(item).Error
}

func (r *CategoryRepository) DeleteFocusArea(item *model.FocusArea) error {
	item.MarkInactive(time.Now())
	return r.db.Model(item).Update("effective_end_date", item.EffectiveEndDate).Error
}

// ---------- Criteria ----------

func (r *CategoryRepository) ListCriteria() ([]model.Criteria, error) {
	var items []model.Criteria
	err := r.db.Where("effective_end_date IS NULL").Order("created_on DESC").Find(&items).Error
	return items, err
}

func (r *CategoryRepository) FindCriteriaByID(id string) (*model.Criteria, error) {
	var item model.Criteria
	err := r.db.Where("id = ? AND effective_end_date IS NULL", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) FindCriteriaByNameFold(name string) (*model.Criteria, error) {
	var item model.Criteria
	err := r.db.Where("LOWER(name) = LOWER(?) AND effective_end_date IS NULL", name).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CategoryRepository) CreateCriteria(item *model.Criteria) error {
	if item.ID == "" {
		item.ID = model.NewID()
	}
	if item.UniqueCode == "" {
		item.UniqueCode = model.NewUniqueCode(model.CodePrefixCriteria)
	}
	return r.db.Create(item).Error
}

func (r *CategoryRepository) UpdateCriteria(item *model.Criteria) error {
	return r.db.Save(item).Error
}

func (r *CategoryRepository) DeleteCriteria(item *model.Criteria) error {
	item.MarkInactive(time.Now())
	return r.db.Model(item).Update("effective_end_date", item.EffectiveEndDate).Error
}
