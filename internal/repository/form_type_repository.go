package repository

import (
	"time"

	"github.com/fisker/nexforms-backend/internal/model"
	"gorm.io/gorm"
)

type FormTypeRepository struct {
	db *gorm.DB
}

func NewFormTypeRepository(db *gorm.DB) *FormTypeRepository {
	return &FormTypeRepository{db: db}
}

// Create 创建表单类型，自动生成 ID 和 unique_code
func (r *FormTypeRepository) Create(ft *model.FormType) error {
	if ft.ID == "" {
		ft.ID = model.NewID()
	}
	if ft.UniqueCode == "" {
		ft.UniqueCode = model.NewUniqueCode(model.CodePrefixFormType)
	}
	return r.db.Create(ft).Error
}

// FindActiveByCode 根据 unique_code 查找当前有效版本
func (r *FormTypeRepository) FindActiveByCode(code string) (*model.FormType, error) {
	var ft model.FormType
	err := r.db.Where("unique_code = ? AND effective_end_date IS NULL", code).First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// FindActiveByID 根据主键查找当前有效版本
func (r *FormTypeRepository) FindActiveByID(id string) (*model.FormType, error) {
	var ft model.FormType
	err := r.db.Where("id = ? AND effective_end_date IS NULL", id).First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// FindActiveByName 根据名称查找当前有效版本（忽略大小写）
func (r *FormTypeRepository) FindActiveByName(name string) (*model.FormType, error) {
	var ft model.FormType
	err := r.db.Where("LOWER(name) = LOWER(?) AND effective_end_date IS NULL", name).First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// List 查询有效的表单类型，支持名称模糊搜索和排序
func (r *FormTypeRepository) List(search, orderBy string) ([]model.FormType, error) {
	var formTypes []model.FormType
	query := r.db.Where("effective_end_date IS NULL")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if orderBy == "" {
		orderBy = "name"
	}
	err := query.Order(orderBy).Find(&formTypes).Error
	return formTypes, err
}

// ListPaginated 分页查询有效的表单类型
func (r *FormTypeRepository) ListPaginated(search, orderBy string, page, pageSize int) ([]model.FormType, int64, error) {
	var formTypes []model.FormType
	var total int64

	query := r.db.Model(&model.FormType{}).Where("effective_end_date IS NULL")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if orderBy == "" {
		orderBy = "name"
	}
	offset := (page - 1) * pageSize
	err := query.Order(orderBy).Offset(offset).Limit(pageSize).Find(&formTypes).Error
	return formTypes, total, err
}

// Update 更新表单类型
func (r *FormTypeRepository) Update(ft *model.FormType) error {
	return r.db.Save(ft).Error
}

// SoftDelete 软删除（设置 effective_end_date）
func (r *FormTypeRepository) SoftDelete(ft *model.FormType) error {
	ft.MarkInactive(time.Now())
	return r.db.Model(ft).Update("effective_end_date", ft.EffectiveEndDate).Error
}

// HasActiveForms 检查是否有有效表单引用该类型
func (r *FormTypeRepository) HasActiveForms(formTypeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Form{}).
		Where("form_type_id = ? AND effective_end_date IS NULL", formTypeID).
		Count(&count).Error
	return count > 0, err
}

// HasActiveSubTypes 检查是否存在有效子类型
func (r *FormTypeRepository) HasActiveSubTypes(formTypeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.FormType{}).
		Where("parent_form_type_id = ? AND effective_end_date IS NULL", formTypeID).
		Count(&count).Error
	return count > 0, err
}

// ActiveNameMap 有效表单类型 name -> ID 映射（批量导入校验用）
func (r *FormTypeRepository) ActiveNameMap() (map[string]string, error) {
	var formTypes []model.FormType
	if err := r.db.Where("effective_end_date IS NULL").Find(&formTypes).Error; err != nil {
		return nil, err
	}
	m := make(map[string]string, len(formTypes))
	for _, ft := range formTypes {
		m[ft.Name] = ft.ID
	}
	return m, nil
}
