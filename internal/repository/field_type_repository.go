package repository

import (
	"github.com/fisker/nexforms-backend/internal/model"
	"gorm.io/gorm"
)

// FieldTypeRepository 管理数据类型与字段类型
type FieldTypeRepository struct {
	db *gorm.DB
}

func NewFieldTypeRepository(db *gorm.DB) *FieldTypeRepository {
	return &FieldTypeRepository{db: db}
}

// ---------- DataType ----------

// ListDataTypes 查询所有未删除的数据类型
func (r *FieldTypeRepository) ListDataTypes() ([]model.DataType, error) {
	var dataTypes []model.DataType
	err := r.db.Where("is_deleted = ?", false).Order("created_on DESC").Find(&dataTypes).Error
	return dataTypes, err
}

// FindDataTypeByID 根据 ID 查找数据类型
func (r *FieldTypeRepository) FindDataTypeByID(id string) (*model.DataType, error) {
	var dt model.DataType
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&dt).Error
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// FindDataTypeByName 根据名称查找数据类型
func (r *FieldTypeRepository) FindDataTypeByName(name string) (*model.DataType, error) {
	var dt model.DataType
	err := r.db.Where("name = ? AND is_deleted = ?", name, false).First(&dt).Error
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// FindDataTypeByNameFold 根据名称查找数据类型（忽略大小写）
func (r *FieldTypeRepository) FindDataTypeByNameFold(name string) (*model.DataType, error) {
	var dt model.DataType
	err := r.db.Where("LOWER(name) = LOWER(?) AND is_deleted = ?", name, false).First(&dt).Error
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// CreateDataType 创建数据类型
func (r *FieldTypeRepository) CreateDataType(dt *model.DataType) error {
	if dt.ID == "" {
		dt.ID = model.NewID()
	}
	return r.db.Create(dt).Error
}

// UpdateDataType 更新数据类型
func (r *FieldTypeRepository) UpdateDataType(dt *model.DataType) error {
	return r.db.Save(dt).Error
}

// DataTypeInUse 检查数据类型是否被字段类型引用
func (r *FieldTypeRepository) DataTypeInUse(dataTypeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.FieldType{}).
		Where("data_type_id = ? AND is_deleted = ?", dataTypeID, false).
		Count(&count).Error
	return count > 0, err
}

// DeleteDataType 软删除数据类型
func (r *FieldTypeRepository) DeleteDataType(dt *model.DataType) error {
	return r.db.Model(dt).Update("is_deleted", true).Error
}

// ---------- FieldType ----------

// ListFieldTypes 查询所有未删除的字段类型（带数据类型）
func (r *FieldTypeRepository) ListFieldTypes() ([]model.FieldType, error) {
	var fieldTypes []model.FieldType
	err := r.db.Preload("DataType").
		Where("is_deleted = ?", false).
		Order("name ASC").
		Find(&fieldTypes).Error
	return fieldTypes, err
}

// FindFieldTypeByID 根据 ID 查找字段类型
func (r *FieldTypeRepository) FindFieldTypeByID(id string) (*model.FieldType, error) {
	var ft model.FieldType
	err := r.db.Preload("DataType").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// FindFieldTypeByName 根据名称查找字段类型
func (r *FieldTypeRepository) FindFieldTypeByName(name string) (*model.FieldType, error) {
	var ft model.FieldType
	err := r.db.Preload("DataType").
		Where("name = ? AND is_deleted = ?", name, false).
		First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// FindFieldTypeByNameFold 根据名称查找字段类型（忽略大小写）
func (r *FieldTypeRepository) FindFieldTypeByNameFold(name string) (*model.FieldType, error) {
	var ft model.FieldType
	err := r.db.Preload("DataType").
		Where("LOWER(name) = LOWER(?) AND is_deleted = ?", name, false).
		First(&ft).Error
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// CreateFieldType 创建字段类型
func (r *FieldTypeRepository) CreateFieldType(ft *model.FieldType) error {
	if ft.ID == "" {
		ft.ID = model.NewID()
	}
	return r.db.Create(ft).Error
}

// UpdateFieldType 更新字段类型
func (r *FieldTypeRepository) UpdateFieldType(ft *model.FieldType) error {
	return r.db.Save(ft).Error
}

// DeleteFieldType 软删除字段类型
func (r *FieldTypeRepository) DeleteFieldType(ft *model.FieldType) error {
	return r.db.Model(ft).Update("is_deleted", true).Error
}

// FieldTypeInUse 检查字段类型是否被表单字段引用
func (r *FieldTypeRepository) FieldTypeInUse(fieldTypeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.FormField{}).
		Where("field_type_id = ? AND is_deleted = ?", fieldTypeID, false).
		Count(&count).Error
	return count > 0, err
}

// FieldTypeDataTypeMap 字段类型名 -> 数据类型名 映射（批量导入校验用）
func (r *FieldTypeRepository) FieldTypeDataTypeMap() (map[string]string, error) {
	fieldTypes, err := r.ListFieldTypes()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(fieldTypes))
	for _, ft := range fieldTypes {
		if ft.DataType != nil {
			m[ft.Name] = ft.DataType.Name
		}
	}
	return m, nil
}
