package catalog

import (
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
)

// FieldTypeService 数据类型与字段类型目录维护
type FieldTypeService struct {
	repo *repository.FieldTypeRepository
}

func NewFieldTypeService(repo *repository.FieldTypeRepository) *FieldTypeService {
	return &FieldTypeService{repo: repo}
}

// ---------- DataType ----------

// ListDataTypes 查询全部数据类型
func (s *FieldTypeService) ListDataTypes() (interface{}, error) {
	dataTypes, err := s.repo.ListDataTypes()
	if err != nil {
		return nil, err
	}
	items := make([]map[string]interface{}, 0, len(dataTypes))
	for _, dt := range dataTypes {
		items = append(items, map[string]interface{}{
			"id":               dt.ID,
			"type":             dt.Name,
			"validation_rules": dt.ValidationRules,
		})
	}
	return map[string]interface{}{"data_types": items}, nil
}

// CreateDataType 创建数据类型
func (s *FieldTypeService) CreateDataType(input DataTypeInput) (interface{}, error) {
	name, err := s.validateDataTypeName(input.Name, "")
	if err != nil {
		return nil, err
	}

	dt := &model.DataType{Name: name}
	if len(input.ValidationRules) > 0 {
		dt.ValidationRules = datatypes.JSON(input.ValidationRules)
	}
	if err := s.repo.CreateDataType(dt); err != nil {
		logger.Sugar.Errorf("create data type %q: %v", name, err)
		return nil, err
	}
	return serializeDataType(dt), nil
}

// UpdateDataType 更新数据类型
func (s *FieldTypeService) UpdateDataType(id string, input DataTypeInput) (interface{}, error) {
	dt, err := s.repo.FindDataTypeByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDataTypeNotFound
		}
		return nil, err
	}

	name, err := s.validateDataTypeName(input.Name, dt.ID)
	if err != nil {
		return nil, err
	}
	dt.Name = name
	if len(input.ValidationRules) > 0 {
		dt.ValidationRules = datatypes.JSON(input.ValidationRules)
	}
	if err := s.repo.UpdateDataType(dt); err != nil {
		return nil, err
	}
	return serializeDataType(dt), nil
}

// DeleteDataType 删除数据类型，被字段类型引用时拒绝
func (s *FieldTypeService) DeleteDataType(id string) (interface{}, error) {
	dt, err := s.repo.FindDataTypeByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDataTypeNotFound
		}
		return nil, err
	}

	inUse, err := s.repo.DataTypeInUse(dt.ID)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrDataTypeInUse
	}

	if err := s.repo.DeleteDataType(dt); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": dt.ID, "name": dt.Name}, nil
}

func (s *FieldTypeService) validateDataTypeName(name, excludeID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	existing, err := s.repo.FindDataTypeByNameFold(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if existing != nil && existing.ID != excludeID {
		return "", ErrDataTypeNameTaken
	}
	return name, nil
}

func serializeDataType(dt *model.DataType) map[string]interface{} {
	return map[string]interface{}{
		"id":               dt.ID,
		"type":             dt.Name,
		"name":             dt.Name,
		"validation_rules": dt.ValidationRules,
		"created_on":       dt.CreatedOn.Format(timeLayout),
		"updated_on":       dt.UpdatedOn.Format(timeLayout),
	}
}

// ---------- FieldType ----------

// ListFieldTypes 查询全部字段类型
func (s *FieldTypeService) ListFieldTypes() (interface{}, error) {
	fieldTypes, err := s.repo.ListFieldTypes()
	if err != nil {
		return nil, err
	}
	items := make([]map[string]interface{}, 0, len(fieldTypes))
	for _, ft := range fieldTypes {
		item := map[string]interface{}{
			"id":               ft.ID,
			"label":            ft.Name,
			"dynamic":          ft.Dynamic,
			"end_point":        ft.Endpoint,
			"validation_rules": ft.ValidationRules,
			"default":          ft.Default,
		}
		if ft.DataType != nil {
			item["type_id"] = ft.DataType.ID
			item["type"] = ft.DataType.Name
		}
		items = append(items, item)
	}
	return map[string]interface{}{"field_types": items}, nil
}

// SaveFieldType 创建字段类型；field_type_id 给定时更新已有记录，返回是否为新建
func (s *FieldTypeService) SaveFieldType(input FieldTypeInput) (interface{}, bool, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, false, ErrNameRequired
	}
	dataType, err := s.repo.FindDataTypeByID(input.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrDataTypeNotFound
		}
		return nil, false, err
	}

	var ft *model.FieldType
	created := false
	if input.FieldTypeID != nil && *input.FieldTypeID != "" {
		ft, err = s.repo.FindFieldTypeByID(*input.FieldTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, ErrFieldTypeNotFound
			}
			return nil, false, err
		}
	} else {
		ft = &model.FieldType{}
		created = true
	}

	existing, err := s.repo.FindFieldTypeByName(label)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if existing != nil && existing.ID != ft.ID {
		return nil, false, ErrFieldTypeNameTaken
	}

	ft.Name = label
	ft.DataTypeID = dataType.ID
	ft.DataType = dataType
	ft.Dynamic = input.Dynamic
	if input.EndPoint != nil {
		ft.Endpoint = *input.EndPoint
	}
	if len(input.ValidationRules) > 0 {
		ft.ValidationRules = datatypes.JSON(input.ValidationRules)
	}

	if created {
		err = s.repo.CreateFieldType(ft)
	} else {
		err = s.repo.UpdateFieldType(ft)
	}
	if err != nil {
		logger.Sugar.Errorf("save field type %q: %v", label, err)
		return nil, false, err
	}
	return serializeFieldType(ft), created, nil
}

// UpdateFieldType 按 ID 更新字段类型
func (s *FieldTypeService) UpdateFieldType(id string, input FieldTypeInput) (interface{}, error) {
	input.FieldTypeID = &id
	result, _, err := s.SaveFieldType(input)
	return result, err
}

// DeleteFieldType 按 ID 软删除字段类型
func (s *FieldTypeService) DeleteFieldType(id string) (interface{}, error) {
	ft, err := s.repo.FindFieldTypeByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldTypeNotFound
		}
		return nil, err
	}

	if err := s.repo.DeleteFieldType(ft); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": ft.ID, "name": ft.Name}, nil
}

func serializeFieldType(ft *model.FieldType) map[string]interface{} {
	item := map[string]interface{}{
		"id":               ft.ID,
		"label":            ft.Name,
		"name":             ft.Name,
		"dynamic":          ft.Dynamic,
		"end_point":        ft.Endpoint,
		"validation_rules": ft.ValidationRules,
		"default":          ft.Default,
		"created_on":       ft.CreatedOn.Format(timeLayout),
		"updated_on":       ft.UpdatedOn.Format(timeLayout),
	}
	if ft.DataType != nil {
		item["type_id"] = ft.DataType.ID
		item["type"] = ft.DataType.Name
	}
	return item
}
