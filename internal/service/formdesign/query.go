package formdesign

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
)

// 仪表盘表单列表固定每页 9 条
const dashboardPageSize = 9

// categoryNames 一次性取出主流程与准则的 id -> name 映射，避免逐表单查询
func (s *Service) categoryNames() (map[string]string, map[string]string, error) {
	mainProcesses, err := s.categoryRepo.ListMainProcesses()
	if err != nil {
		return nil, nil, err
	}
	mpNames := make(map[string]string, len(mainProcesses))
	for _, mp := range mainProcesses {
		mpNames[mp.ID] = mp.Name
	}

	criteria, err := s.categoryRepo.ListCriteria()
	if err != nil {
		return nil, nil, err
	}
	criteriaNames := make(map[string]string, len(criteria))
	for _, c := range criteria {
		criteriaNames[c.ID] = c.Name
	}
	return mpNames, criteriaNames, nil
}

// resolveFilters 把查询参数里的类型/分类标识换成内部 ID。
// 标识无效时返回 ErrFormNotFound 对应的空结果语义由调用方处理
func (s *Service) resolveFilters(params *ListFormsParams) (repository.FormFilters, error) {
	filters := repository.FormFilters{
		Search:      params.Search,
		IsCompleted: params.IsCompleted,
	}

	if params.FormTypeID != "" || params.FormTypeName != "" {
		var formType *model.FormType
		var err error
		if params.FormTypeID != "" {
			formType, err = s.formTypeRepo.FindActiveByCode(params.FormTypeID)
			if err != nil {
				formType, err = s.formTypeRepo.FindActiveByID(params.FormTypeID)
			}
		} else {
			formType, err = s.formTypeRepo.FindActiveByName(params.FormTypeName)
		}
		if err != nil {
			return filters, ErrFormTypeNotFound
		}
		filters.FormTypeID = formType.ID
	}

	if params.MainProcess != "" {
		mp, err := s.categoryRepo.FindMainProcessByID(params.MainProcess)
		if err != nil {
			return filters, ErrMainProcessNotFound
		}
		filters.MainProcessID = mp.ID
	}

	if params.Criteria != "" {
		criteria, err := s.categoryRepo.FindCriteriaByID(params.Criteria)
		if err != nil {
			return filters, ErrCriteriaNotFound
		}
		filters.CriteriaID = criteria.ID
	}

	if params.Location != "" {
		filters.LocationID = params.Location
	}

	return filters, nil
}

// versionEntries 返回谱系内全部有效版本，按版本号升序
func (s *Service) versionEntries(rootID string) ([]map[string]interface{}, error) {
	versions, err := s.formRepo.AllVersions(rootID)
	if err != nil {
		return nil, err
	}
	entries := make([]map[string]interface{}, 0, len(versions))
	for _, v := range versions {
		entries = append(entries, map[string]interface{}{
			"id":          v.ID,
			"version":     v.Version,
			"unique_code": v.UniqueCode,
		})
	}
	return entries, nil
}

// ListForms 仪表盘表单列表：每个谱系只展示最新版本，固定每页 9 条。
// is_completed=false 时不附带版本历史
func (s *Service) ListForms(params *ListFormsParams) (*FormPage, error) {
	empty := &FormPage{Forms: []map[string]interface{}{}, ObjCount: 0, MaxPages: 1, MaxRows: dashboardPageSize}

	filters, err := s.resolveFilters(params)
	if err != nil {
		return empty, err
	}

	latest, err := s.formRepo.LatestVersions(filters)
	if err != nil {
		return nil, err
	}

	mpNames, criteriaNames, err := s.categoryNames()
	if err != nil {
		return nil, err
	}

	total := len(latest)
	maxPages := 1
	if total > 0 {
		maxPages = int(math.Ceil(float64(total) / float64(dashboardPageSize)))
	}

	page := params.PageNumber
	if page < 1 {
		page = 1
	}
	start := (page - 1) * dashboardPageSize
	end := start + dashboardPageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	includeAllVersions := params.IsCompleted == nil || *params.IsCompleted

	forms := make([]map[string]interface{}, 0, end-start)
	for _, form := range latest[start:end] {
		entry := s.serializeFormSummary(&form, mpNames, criteriaNames)
		if includeAllVersions {
			versions, err := s.versionEntries(repository.LineageKey(&form))
			if err != nil {
				return nil, err
			}
			entry["all_versions"] = versions
		}
		forms = append(forms, entry)
	}

	return &FormPage{
		Forms:    forms,
		ObjCount: total,
		MaxPages: maxPages,
		MaxRows:  dashboardPageSize,
	}, nil
}

func (s *Service) serializeFormSummary(form *model.Form, mpNames, criteriaNames map[string]string) map[string]interface{} {
	typeName := interface{}(nil)
	if form.FormType != nil {
		typeName = form.FormType.Name
	}

	var mainProcess, criteria, location interface{}
	if form.MainProcessID != nil {
		mainProcess = map[string]interface{}{"id": *form.MainProcessID, "name": mpNames[*form.MainProcessID]}
	}
	if form.CriteriaID != nil {
		criteria = map[string]interface{}{"id": *form.CriteriaID, "name": criteriaNames[*form.CriteriaID]}
	}
	if form.LocationID != nil {
		location = map[string]interface{}{"id": *form.LocationID}
	}

	return map[string]interface{}{
		"id":           form.UniqueCode,
		"version_id":   form.ID,
		"name":         form.Title,
		"title":        form.Title,
		"type":         typeName,
		"description":  form.Description,
		"is_completed": form.IsCompleted,
		"version":      form.Version,
		"main_process": mainProcess,
		"criteria":     criteria,
		"location":     location,
		"created_on":   form.CreatedOn.Format(time.RFC3339),
	}
}

// FormsList 下拉选择用的表单列表，始终附带版本历史
func (s *Service) FormsList(params *ListFormsParams) ([]map[string]interface{}, error) {
	filters, err := s.resolveFilters(params)
	if err != nil {
		return []map[string]interface{}{}, err
	}

	latest, err := s.formRepo.LatestVersions(filters)
	if err != nil {
		return nil, err
	}

	mpNames, criteriaNames, err := s.categoryNames()
	if err != nil {
		return nil, err
	}

	response := make([]map[string]interface{}, 0, len(latest))
	for _, form := range latest {
		entry := s.serializeFormSummary(&form, mpNames, criteriaNames)
		versions, err := s.versionEntries(repository.LineageKey(&form))
		if err != nil {
			return nil, err
		}
		entry["all_versions"] = versions
		response = append(response, entry)
	}
	return response, nil
}

// FormsByType 按类型筛选已完成的表单。typeParam 依次按
// unique_code 前缀、UUID、名称解析
func (s *Service) FormsByType(typeParam, search string) ([]map[string]interface{}, error) {
	completed := true
	filters := repository.FormFilters{Search: search, IsCompleted: &completed}

	if typeParam != "" {
		var formType *model.FormType
		var err error
		switch {
		case strings.HasPrefix(typeParam, model.CodePrefixFormType+"-"):
			formType, err = s.formTypeRepo.FindActiveByCode(typeParam)
		default:
			if _, parseErr := uuid.Parse(typeParam); parseErr == nil {
				formType, err = s.formTypeRepo.FindActiveByID(typeParam)
			} else {
				formType, err = s.formTypeRepo.FindActiveByName(typeParam)
			}
		}
		if err != nil {
			return nil, ErrFormTypeNotFound
		}
		filters.FormTypeID = formType.ID
	}

	forms, err := s.formRepo.ListActive(filters)
	if err != nil {
		return nil, err
	}

	response := make([]map[string]interface{}, 0, len(forms))
	for _, form := range forms {
		typeName := interface{}(nil)
		if form.FormType != nil {
			typeName = form.FormType.Name
		}
		response = append(response, map[string]interface{}{
			"id":           form.ID,
			"name":         form.Title,
			"title":        form.Title,
			"type":         typeName,
			"description":  form.Description,
			"is_completed": form.IsCompleted,
			"version":      form.Version,
			"parent_form":  form.ParentFormID,
			"root_form":    form.RootFormID,
		})
	}
	return response, nil
}

// FormDetail 按主键查询有效表单
func (s *Service) FormDetail(pk string) (map[string]interface{}, error) {
	form, err := s.formRepo.FindActiveByID(pk)
	if err != nil {
		return nil, ErrFormNotFound
	}

	formType, _ := s.formTypeRepo.FindActiveByID(form.FormTypeID)
	typeName := interface{}(nil)
	if formType != nil {
		typeName = formType.Name
	}

	return map[string]interface{}{
		"id":           form.ID,
		"unique_code":  form.UniqueCode,
		"title":        form.Title,
		"description":  form.Description,
		"form_type":    typeName,
		"is_completed": form.IsCompleted,
		"version":      form.Version,
		"parent_form":  form.ParentFormID,
		"root_form":    form.RootFormID,
		"created_on":   form.CreatedOn.Format(time.RFC3339),
	}, nil
}

// FormsWithSections 表单及其章节列表（每个谱系最新版本），
// 附带各版本的章节，供工作流配置端选择
func (s *Service) FormsWithSections(search string) ([]map[string]interface{}, error) {
	filters := repository.FormFilters{Search: search}
	latest, err := s.formRepo.LatestVersions(filters)
	if err != nil {
		return nil, err
	}

	response := make([]map[string]interface{}, 0, len(latest))
	for _, form := range latest {
		sections, err := s.sectionEntries(form.ID)
		if err != nil {
			return nil, err
		}
		if len(sections) == 0 {
			continue
		}

		versions, err := s.formRepo.AllVersions(repository.LineageKey(&form))
		if err != nil {
			return nil, err
		}

		versionList := make([]map[string]interface{}, 0, len(versions))
		for _, v := range versions {
			versionSections, err := s.sectionEntries(v.ID)
			if err != nil {
				return nil, err
			}
			versionList = append(versionList, map[string]interface{}{
				"id":       v.ID,
				"version":  v.Version,
				"name":     v.Title,
				"sections": versionSections,
			})
		}

		response = append(response, map[string]interface{}{
			"id":           form.ID,
			"name":         form.Title,
			"version":      form.Version,
			"all_versions": versionList,
			"sections":     sections,
		})
	}
	return response, nil
}

func (s *Service) sectionEntries(formID string) ([]map[string]interface{}, error) {
	sections, err := s.formRepo.SectionsByFormID(formID)
	if err != nil {
		return nil, err
	}
	entries := make([]map[string]interface{}, 0, len(sections))
	for _, section := range sections {
		entries = append(entries, map[string]interface{}{
			"section_id":   section.ID,
			"section_name": section.Name,
		})
	}
	return entries, nil
}

// GetFormFields 返回表单的完整结构：章节、字段树和元数据
func (s *Service) GetFormFields(formID string) (map[string]interface{}, error) {
	form, err := s.formRepo.FindActiveByCodeOrID(formID)
	if err != nil {
		// 历史版本也允许按 UUID 直接查
		form, err = s.formRepo.FindByID(formID)
		if err != nil {
			return nil, ErrFormNotFound
		}
	}

	formType, _ := s.formTypeRepo.FindActiveByID(form.FormTypeID)
	typeName := interface{}(nil)
	if formType != nil {
		typeName = formType.Name
	}

	sections, err := s.formRepo.SectionsByFormID(form.ID)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"form_id": form.ID,
		"form_details": map[string]interface{}{
			"title":       form.Title,
			"form_type":   typeName,
			"description": form.Description,
			"version":     form.Version,
			"created_on":  form.CreatedOn.Format(time.RFC3339),
		},
		"sections": []interface{}{},
	}

	sectionList := make([]interface{}, 0, len(sections))
	for _, section := range sections {
		fields, err := s.formRepo.FieldsBySectionID(section.ID)
		if err != nil {
			return nil, err
		}

		childByParent := make(map[string][]model.FormField)
		var topLevel []model.FormField
		for _, field := range fields {
			if field.ParentFieldID != nil {
				childByParent[*field.ParentFieldID] = append(childByParent[*field.ParentFieldID], field)
			} else {
				topLevel = append(topLevel, field)
			}
		}

		serialized := make([]interface{}, 0, len(topLevel))
		for i := range topLevel {
			serialized = append(serialized, serializeField(&topLevel[i], childByParent))
		}

		var dependency interface{}
		if len(section.Dependency) > 0 {
			_ = json.Unmarshal(section.Dependency, &dependency)
		}
		if dependency == nil {
			dependency = map[string]interface{}{}
		}

		sectionList = append(sectionList, map[string]interface{}{
			"section_id":   section.ID,
			"section_name": section.Name,
			"dependency":   dependency,
			"fields":       serialized,
		})
	}
	response["sections"] = sectionList
	return response, nil
}

// serializeField 序列化单个字段并递归展开子字段，
// additional_info 的键平铺进字段对象
func serializeField(field *model.FormField, childByParent map[string][]model.FormField) map[string]interface{} {
	var dependency interface{}
	if len(field.Dependency) > 0 {
		_ = json.Unmarshal(field.Dependency, &dependency)
	}
	if dependency == nil {
		dependency = map[string]interface{}{}
	}

	data := map[string]interface{}{
		"field_id":   field.ID,
		"label":      field.Label,
		"name":       field.Name,
		"required":   field.Required,
		"dependency": dependency,
		"dynamic":    false,
	}

	if field.FieldType != nil {
		data["dynamic"] = field.FieldType.Dynamic
		data["end_point"] = field.FieldType.Endpoint
		if field.FieldType.DataType != nil {
			data["type_id"] = field.FieldType.DataType.ID
			data["type"] = field.FieldType.DataType.Name
		}
	}

	if len(field.AdditionalInfo) > 0 {
		var info map[string]interface{}
		if json.Unmarshal(field.AdditionalInfo, &info) == nil {
			for key, value := range info {
				if key == "end_point" {
					continue
				}
				data[key] = value
			}
		}
	}

	if children := childByParent[field.ID]; len(children) > 0 {
		sub := make([]interface{}, 0, len(children))
		for i := range children {
			sub = append(sub, serializeField(&children[i], childByParent))
		}
		data["fields"] = sub
	}

	return data
}
