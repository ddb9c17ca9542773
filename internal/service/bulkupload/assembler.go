package bulkupload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
)

// FormInfo 单个表单创建结果的摘要信息
type FormInfo struct {
	ID            string `json:"id"`
	UniqueCode    string `json:"unique_code"`
	Title         string `json:"title"`
	SectionsCount int    `json:"sections_count"`
	FieldsCount   int    `json:"fields_count"`
}

// FormResult createSingleForm 的返回结果
type FormResult struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	FormInfo *FormInfo `json:"form_info,omitempty"`
}

// createdField 组装过程中的字段记录，保留解析后的附加信息供草稿构建复用
type createdField struct {
	field     *model.FormField
	info      map[string]interface{}
	fieldType *model.FieldType
}

type createdSection struct {
	section *model.FormSection
	fields  []*createdField
}

// buildSimpleDependency 由三列简单依赖合成前端格式的依赖 JSON
func buildSimpleDependency(fieldName, sectionName, option string) map[string]interface{} {
	return map[string]interface{}{
		"field_name":         fieldName,
		"field_section":      sectionName,
		"options_selected":   []interface{}{option},
		"cascader_selection": []interface{}{[]interface{}{sectionName, fieldName, option}},
		"multiple_field_dependencies": []interface{}{
			map[string]interface{}{
				"field_name":       fieldName,
				"field_section":    sectionName,
				"options_selected": []interface{}{option},
			},
		},
	}
}

func emptyDependency() map[string]interface{} {
	return map[string]interface{}{
		"field_name":                  "",
		"field_section":               "",
		"options_selected":            []interface{}{},
		"cascader_selection":          []interface{}{},
		"multiple_field_dependencies": []interface{}{},
	}
}

func marshalJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// createSingleForm 在单个事务内创建表单及其章节、字段和草稿快照
func (s *Service) createSingleForm(formData Row, data *ParsedData, username string) *FormResult {
	formTitle := formData.Get("form_title")
	formTypeName := formData.Get("form_type")
	description := formData.Get("description")
	isCompleted := ParseBoolean(formData.Get("is_completed"))

	formType, err := s.formTypeRepo.FindActiveByName(formTypeName)
	if err != nil {
		return &FormResult{
			Status:  "failed",
			Message: fmt.Sprintf("Form '%s': Form Type '%s' not found.", formTitle, formTypeName),
		}
	}

	var result *FormResult
	err = s.formRepo.Transaction(func(txRepo *repository.FormRepository) error {
		form := &model.Form{
			Title:       formTitle,
			FormTypeID:  formType.ID,
			Description: description,
			IsCompleted: isCompleted,
		}
		form.CreatedBy = username
		if err := txRepo.CreateForm(form); err != nil {
			return err
		}

		// 过滤出属于当前表单的章节与字段行
		var formSections, formFields []Row
		for _, row := range data.Sections {
			if strings.EqualFold(row.Get("form_title"), formTitle) {
				formSections = append(formSections, row)
			}
		}
		for _, row := range data.Fields {
			if strings.EqualFold(row.Get("form_title"), formTitle) {
				formFields = append(formFields, row)
			}
		}

		// 创建章节
		sectionMap := make(map[string]*createdSection) // 章节名小写 -> 章节
		var sections []*createdSection

		for _, sectionData := range formSections {
			sectionName := sectionData.Get("section_name")
			sectionOrder, _ := ParseOrder(sectionData.Get("section_order"))
			if sectionOrder == 0 {
				sectionOrder = 1
			}

			depSection := sectionData.Get("dependency_section")
			depField := sectionData.Get("dependency_field")
			depOption := sectionData.Get("dependency_option")

			var dependency datatypes.JSON
			if depSection != "" && depField != "" && depOption != "" {
				// 简单依赖优先：先尝试用字段行里填写的 field_name，找不到就
				// 先记标签，待所有字段创建完成后回填真实字段名
				fieldNameToUse := ""
				for _, field := range formFields {
					if strings.EqualFold(field.Get("section_name"), depSection) &&
						strings.EqualFold(field.Get("field_label"), depField) {
						fieldNameToUse = field.Get("field_name")
						break
					}
				}
				if fieldNameToUse == "" {
					fieldNameToUse = depField
				}
				dependency = marshalJSON(buildSimpleDependency(fieldNameToUse, depSection, depOption))
			} else if depJSON := sectionData.Get("dependency"); depJSON != "" && json.Valid([]byte(depJSON)) {
				dependency = datatypes.JSON(depJSON)
			}

			section := &model.FormSection{
				FormID:      form.ID,
				Name:        sectionName,
				Description: sectionData.Get("section_description"),
				Order:       sectionOrder,
				Dependency:  dependency,
			}
			if err := txRepo.CreateSection(section); err != nil {
				return err
			}

			cs := &createdSection{section: section}
			sectionMap[strings.ToLower(sectionName)] = cs
			sections = append(sections, cs)
		}

		// 创建字段：父字段优先，保证子字段创建时能解析到父字段
		sortedFields := make([]Row, 0, len(formFields))
		for _, f := range formFields {
			if f.Get("parent_field") == "" {
				sortedFields = append(sortedFields, f)
			}
		}
		for _, f := range formFields {
			if f.Get("parent_field") != "" {
				sortedFields = append(sortedFields, f)
			}
		}

		fieldMap := make(map[string]*createdField) // 章节名小写|标签小写 -> 字段
		fieldsCreated := 0

		for _, fieldData := range sortedFields {
			sectionName := fieldData.Get("section_name")
			fieldLabel := fieldData.Get("field_label")
			fieldTypeName := fieldData.Get("field_type")
			required := ParseBoolean(fieldData.Get("required"))
			fieldOrder, _ := ParseOrder(fieldData.Get("field_order"))
			if fieldOrder == 0 {
				fieldOrder = 1
			}

			cs, ok := sectionMap[strings.ToLower(sectionName)]
			if !ok {
				logger.Sugar.Warnf("字段 '%s' 所属章节 '%s' 不存在，跳过", fieldLabel, sectionName)
				continue
			}

			fieldType, err := s.fieldTypeRepo.FindFieldTypeByNameFold(fieldTypeName)
			if err != nil {
				logger.Sugar.Warnf("字段类型 '%s' 不存在，跳过字段 '%s'", fieldTypeName, fieldLabel)
				continue
			}

			// 组装 additional_info：附加信息、选项、宽度、校验规则
			info := make(map[string]interface{})
			if raw := fieldData.Get("additional_info"); raw != "" {
				_ = json.Unmarshal([]byte(raw), &info)
				if info == nil {
					info = make(map[string]interface{})
				}
			}
			if raw := fieldData.Get("options"); raw != "" {
				var options interface{}
				if json.Unmarshal([]byte(raw), &options) == nil {
					info["options"] = options
				}
			}
			info["width"] = ParseWidth(fieldData.Get("width"))
			if raw := fieldData.Get("validation"); raw != "" {
				var validation interface{}
				if json.Unmarshal([]byte(raw), &validation) == nil {
					info["validation"] = validation
				} else {
					logger.Sugar.Warnf("字段 '%s' 的 Validation 列不是合法 JSON: %s", fieldLabel, raw)
				}
			}

			// 按类型名或标签中的关键字自动配置动态数据源
			if endpoint := DynamicEndpointFor(fieldType.Name, fieldLabel); endpoint != "" {
				info["dynamic"] = true
				info["end_point"] = endpoint
			}

			// 字段依赖：简单三列优先，其次 JSON 列
			fieldDepSection := fieldData.Get("field_dep_section")
			fieldDepField := fieldData.Get("field_dep_field")
			fieldDepOption := fieldData.Get("field_dep_option")

			var dependency datatypes.JSON
			if fieldDepSection != "" && fieldDepField != "" && fieldDepOption != "" {
				dependency = marshalJSON(buildSimpleDependency(fieldDepField, fieldDepSection, fieldDepOption))
			} else if depJSON := fieldData.Get("field_dependency"); depJSON != "" && json.Valid([]byte(depJSON)) {
				dependency = datatypes.JSON(depJSON)
			}

			// 父字段在同一章节内按标签解析
			var parentFieldID *string
			if parentLabel := fieldData.Get("parent_field"); parentLabel != "" {
				parentKey := strings.ToLower(sectionName) + "|" + strings.ToLower(parentLabel)
				if parent, ok := fieldMap[parentKey]; ok {
					parentFieldID = &parent.field.ID
				}
			}

			field := &model.FormField{
				Label:          fieldLabel,
				Name:           GenerateUniqueFieldName("field"),
				FieldTypeID:    fieldType.ID,
				SectionID:      cs.section.ID,
				Required:       required,
				Order:          fieldOrder,
				AdditionalInfo: marshalJSON(info),
				ParentFieldID:  parentFieldID,
				Dependency:     dependency,
			}
			if err := txRepo.CreateField(field); err != nil {
				return err
			}

			cf := &createdField{field: field, info: info, fieldType: fieldType}
			fieldMap[strings.ToLower(sectionName)+"|"+strings.ToLower(fieldLabel)] = cf
			cs.fields = append(cs.fields, cf)
			fieldsCreated++
		}

		// 所有字段创建完毕后，把章节依赖中的临时标签回填为真实字段名
		for _, cs := range sections {
			patched, changed := patchDependency(cs.section.Dependency, fieldMap, sections)
			if changed {
				cs.section.Dependency = patched
				if err := txRepo.UpdateSection(cs.section); err != nil {
					return err
				}
			}
		}

		// 字段依赖同样回填
		for _, cs := range sections {
			for _, cf := range cs.fields {
				patched, changed := patchDependency(cf.field.Dependency, fieldMap, sections)
				if changed {
					cf.field.Dependency = patched
					if err := txRepo.UpdateField(cf.field); err != nil {
						return err
					}
				}
			}
		}

		// 构建与前端设计器一致的草稿快照
		draftData := buildDraftData(form, formType, sections)
		if _, err := txRepo.UpsertDraft(form.ID, marshalJSON(draftData)); err != nil {
			return err
		}

		result = &FormResult{
			Status:  "success",
			Message: fmt.Sprintf("Form '%s' created with %d sections and %d fields.", formTitle, len(sections), fieldsCreated),
			FormInfo: &FormInfo{
				ID:            form.ID,
				UniqueCode:    form.UniqueCode,
				Title:         form.Title,
				SectionsCount: len(sections),
				FieldsCount:   fieldsCreated,
			},
		}
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("创建表单 '%s' 失败: %v", formTitle, err)
		return &FormResult{Status: "failed", Message: fmt.Sprintf("Form '%s': Error - %v", formTitle, err)}
	}
	return result
}

// patchDependency 把依赖 JSON 中按标签引用的 field_name 换成真实字段名，
// 同步更新 cascader_selection 和 multiple_field_dependencies
func patchDependency(raw datatypes.JSON, fieldMap map[string]*createdField, sections []*createdSection) (datatypes.JSON, bool) {
	if len(raw) == 0 {
		return raw, false
	}

	var dep map[string]interface{}
	if err := json.Unmarshal(raw, &dep); err != nil {
		return raw, false
	}

	identifier, _ := dep["field_name"].(string)
	depSectionName, _ := dep["field_section"].(string)
	if identifier == "" || depSectionName == "" {
		return raw, false
	}

	// 先按标签找，找不到再按真实字段名找
	actual := fieldMap[strings.ToLower(depSectionName)+"|"+strings.ToLower(identifier)]
	if actual == nil {
		for _, cs := range sections {
			if !strings.EqualFold(cs.section.Name, depSectionName) {
				continue
			}
			for _, cf := range cs.fields {
				if cf.field.Name == identifier {
					actual = cf
					break
				}
			}
		}
	}
	if actual == nil || actual.field.Name == identifier {
		return raw, false
	}

	dep["field_name"] = actual.field.Name

	if cascader, ok := dep["cascader_selection"].([]interface{}); ok {
		for _, entry := range cascader {
			if path, ok := entry.([]interface{}); ok && len(path) >= 2 {
				if name, ok := path[1].(string); ok && name == identifier {
					path[1] = actual.field.Name
				}
			}
		}
	}

	if multi, ok := dep["multiple_field_dependencies"].([]interface{}); ok {
		for _, entry := range multi {
			if item, ok := entry.(map[string]interface{}); ok {
				if name, ok := item["field_name"].(string); ok && name == identifier {
					item["field_name"] = actual.field.Name
				}
			}
		}
	}

	return marshalJSON(dep), true
}

// buildDraftData 生成表单设计器格式的草稿数据
func buildDraftData(form *model.Form, formType *model.FormType, sections []*createdSection) map[string]interface{} {
	draft := map[string]interface{}{
		"fields":     []interface{}{},
		"sections":   []interface{}{},
		"version_id": form.ID,
		"form_details": map[string]interface{}{
			"title":       form.Title,
			"form_type":   formType.UniqueCode,
			"description": form.Description,
		},
	}

	ordered := make([]*createdSection, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].section.Order < ordered[j].section.Order
	})

	var draftSections []interface{}
	for _, cs := range ordered {
		millis := time.Now().UnixMilli()
		sectionID := fmt.Sprintf("section_%d_%s", millis, shortID(cs.section.ID))

		var dependency interface{}
		if len(cs.section.Dependency) > 0 {
			_ = json.Unmarshal(cs.section.Dependency, &dependency)
		}
		if dependency == nil {
			dependency = emptyDependency()
		}

		orderedFields := make([]*createdField, len(cs.fields))
		copy(orderedFields, cs.fields)
		sort.SliceStable(orderedFields, func(i, j int) bool {
			return orderedFields[i].field.Order < orderedFields[j].field.Order
		})

		var draftFields []interface{}
		for _, cf := range orderedFields {
			draftFields = append(draftFields, buildDraftField(cf))
		}
		if draftFields == nil {
			draftFields = []interface{}{}
		}

		draftSections = append(draftSections, map[string]interface{}{
			"section_id":   sectionID,
			"section_name": cs.section.Name,
			"dependency":   dependency,
			"fields":       draftFields,
		})
	}
	if draftSections != nil {
		draft["sections"] = draftSections
	}
	return draft
}

func buildDraftField(cf *createdField) map[string]interface{} {
	field := cf.field
	fieldType := cf.fieldType
	info := cf.info

	isDynamic := fieldType.Dynamic
	var endpoint interface{}
	if fieldType.Dynamic {
		endpoint = fieldType.Endpoint
	}
	if ep := DynamicEndpointFor(fieldType.Name, field.Label); ep != "" {
		isDynamic = true
		endpoint = ep
	}

	options := info["options"]
	if options == nil {
		options = []interface{}{}
	}

	dataTypeName := ""
	if fieldType.DataType != nil {
		dataTypeName = fieldType.DataType.Name
	}

	// 按数据类型给出前端校验对象的默认结构
	validation := map[string]interface{}{}
	switch dataTypeName {
	case "select":
		validation = map[string]interface{}{
			"isMultiple":   infoOr(info, "isMultiple", false),
			"maxSelection": infoOr(info, "maxSelection", ""),
			"minSelection": map[bool]int{true: 1, false: 0}[field.Required],
		}
	case "text":
		validation = map[string]interface{}{
			"pattern":   infoOr(info, "pattern", ""),
			"maxLength": infoOr(info, "maxLength", ""),
			"minLength": infoOr(info, "minLength", 0),
		}
	case "number":
		validation = map[string]interface{}{
			"min": infoOr(info, "min", ""),
			"max": infoOr(info, "max", ""),
		}
	case "file":
		validation = map[string]interface{}{
			"fileType":    infoOr(info, "fileType", ""),
			"isMultiple":  infoOr(info, "isMultiple", false),
			"maxFileSize": infoOr(info, "maxFileSize", ""),
		}
	case "date":
		validation = map[string]interface{}{
			"startDateBeforeOrEqualEndDate": true,
		}
	}

	var dependency interface{}
	if len(field.Dependency) > 0 {
		_ = json.Unmarshal(field.Dependency, &dependency)
	}
	if dependency == nil {
		dependency = emptyDependency()
	}

	return map[string]interface{}{
		"name":       fmt.Sprintf("field_%d_%s", time.Now().UnixMilli(), shortID(field.ID)),
		"type":       dataTypeName,
		"label":      field.Label,
		"value":      nil,
		"width":      infoOr(info, "width", "100"),
		"fields":     []interface{}{},
		"dynamic":    isDynamic,
		"options":    options,
		"type_id":    fieldType.ID,
		"position":   field.Order - 1,
		"required":   field.Required,
		"end_point":  endpoint,
		"dependency": dependency,
		"validation": validation,
	}
}

func infoOr(info map[string]interface{}, key string, fallback interface{}) interface{} {
	if v, ok := info[key]; ok {
		return v
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
