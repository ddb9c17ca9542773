package bulkupload

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError 单条校验错误，row 为数据在工作表中的实际行号
type ValidationError struct {
	Row          int    `json:"row"`
	Sheet        string `json:"sheet"`
	Type         string `json:"type"`
	Column       string `json:"column,omitempty"`
	InvalidValue string `json:"invalid_value,omitempty"`
	Message      string `json:"message"`
}

// Lookups 校验所需的库内快照，由仓库层一次性取出后传入
type Lookups struct {
	FormTypes          []string          // 有效表单类型名
	FieldTypes         []string          // 有效字段类型名
	DataTypes          []string          // 有效数据类型名
	FieldTypeDataType  map[string]string // 字段类型名 -> 数据类型名
	ExistingFormTitles map[string]bool   // 库中有效表单标题（小写）
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// ValidateAllSheets 对三张工作表做穷尽式校验，返回全部错误
// 校验内容：必填列、下拉值、文件内查重、库内查重、跨表引用、
// JSON 格式、布尔格式、序号格式、字段类型与数据类型兼容性
func ValidateAllSheets(data *ParsedData, lookups *Lookups) []ValidationError {
	var errors []ValidationError

	// 查重集合
	seenFormTitles := make(map[string]bool)
	seenSections := make(map[string]bool)      // form|section
	seenSectionOrders := make(map[string]bool) // form|order
	seenFields := make(map[string]bool)        // form|section|label
	seenFieldOrders := make(map[string]bool)   // form|section|order

	// Forms 表中的标题集合（跨表引用校验用）
	formTitlesInFile := make(map[string]bool)
	for _, row := range data.Forms {
		if title := row.Get("form_title"); title != "" {
			formTitlesInFile[title] = true
		}
	}

	// 各表单的章节名集合
	sectionsMap := make(map[string]map[string]bool)
	for _, row := range data.Sections {
		formTitle := row.Get("form_title")
		sectionName := row.Get("section_name")
		if formTitle != "" && sectionName != "" {
			if sectionsMap[formTitle] == nil {
				sectionsMap[formTitle] = make(map[string]bool)
			}
			sectionsMap[formTitle][sectionName] = true
		}
	}

	// 按 (表单, 章节, 标签) 查找字段行的选项
	findFieldOptions := func(formTitle, sectionName, fieldLabel string) (bool, []string) {
		for _, fieldRow := range data.Fields {
			if fieldRow.Get("form_title") == formTitle &&
				fieldRow.Get("section_name") == sectionName &&
				fieldRow.Get("field_label") == fieldLabel {
				var options []string
				if optionsStr := fieldRow.Get("options"); optionsStr != "" {
					_ = json.Unmarshal([]byte(optionsStr), &options)
				}
				return true, options
			}
		}
		return false, nil
	}

	// =========================
	// 校验 Forms 表
	// =========================
	for idx, row := range data.Forms {
		actualRow := idx + 4 // 第 1 行标题、第 2 行说明、第 3 行表头，数据从第 4 行开始

		// 1. 必填列
		var missing []string
		for _, field := range requiredFields["forms"] {
			if !row.Has(field) {
				missing = append(missing, OriginalColumnName(field))
			}
		}
		if len(missing) > 0 {
			errors = append(errors, ValidationError{
				Row:     actualRow,
				Sheet:   SheetForms,
				Type:    ErrTypeMissingData,
				Message: fmt.Sprintf("Missing required data in column(s): %s", strings.Join(missing, ", ")),
			})
		}

		// 2. 下拉值：form_type
		if formType := row.Get("form_type"); formType != "" {
			if !containsFold(lookups.FormTypes, formType) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetForms,
					Type:         ErrTypeInvalidDropdown,
					Column:       "Form Type",
					InvalidValue: formType,
					Message:      fmt.Sprintf("'%s' is not a valid Form Type. Must be selected from dropdown.", formType),
				})
			}
		}

		// 3/4. 标题查重（文件内 + 库内）
		if formTitle := row.Get("form_title"); formTitle != "" {
			titleLower := strings.ToLower(formTitle)
			if seenFormTitles[titleLower] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetForms,
					Type:         ErrTypeDuplicateFile,
					Column:       "Form Title",
					InvalidValue: formTitle,
					Message:      fmt.Sprintf("Form title '%s' appears multiple times in this file.", formTitle),
				})
			} else {
				seenFormTitles[titleLower] = true
			}

			if lookups.ExistingFormTitles[titleLower] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetForms,
					Type:         ErrTypeDuplicateEntry,
					Column:       "Form Title",
					InvalidValue: formTitle,
					Message:      fmt.Sprintf("Form with title '%s' already exists in database.", formTitle),
				})
			}
		}

		// 5. is_completed 布尔格式
		if isCompleted := row.Get("is_completed"); isCompleted != "" {
			if !IsValidBooleanToken(isCompleted) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetForms,
					Type:         ErrTypeInvalidFormat,
					Column:       "Is Completed",
					InvalidValue: isCompleted,
					Message:      fmt.Sprintf("'%s' is not a valid boolean. Use TRUE or FALSE.", isCompleted),
				})
			}
		}
	}

	// =========================
	// 校验 Sections 表
	// =========================
	for idx, row := range data.Sections {
		actualRow := idx + 4
		formTitle := row.Get("form_title")

		// 1. 必填列
		var missing []string
		for _, field := range requiredFields["sections"] {
			if !row.Has(field) {
				missing = append(missing, OriginalColumnName(field))
			}
		}
		if len(missing) > 0 {
			errors = append(errors, ValidationError{
				Row:     actualRow,
				Sheet:   SheetSections,
				Type:    ErrTypeMissingData,
				Message: fmt.Sprintf("Missing required data in column(s): %s", strings.Join(missing, ", ")),
			})
		}

		// 2. form_title 必须出现在 Forms 表
		if formTitle != "" && !formTitlesInFile[formTitle] {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetSections,
				Type:         ErrTypeInvalidRef,
				Column:       "Form Title",
				InvalidValue: formTitle,
				Message:      fmt.Sprintf("Form '%s' not found in Forms sheet.", formTitle),
			})
		}

		// 3. section_order 必须是正整数
		sectionOrder := row.Get("section_order")
		orderValid := false
		var orderInt int
		if sectionOrder != "" {
			var err error
			orderInt, err = ParseOrder(sectionOrder)
			if err != nil {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeInvalidFormat,
					Column:       "Section Order",
					InvalidValue: sectionOrder,
					Message:      "Section Order must be a valid integer.",
				})
			} else if orderInt <= 0 {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeInvalidFormat,
					Column:       "Section Order",
					InvalidValue: sectionOrder,
					Message:      "Section Order must be a positive integer.",
				})
			} else {
				orderValid = true
			}
		}

		// 4. (表单, 章节名) 查重
		sectionName := row.Get("section_name")
		if formTitle != "" && sectionName != "" {
			key := strings.ToLower(formTitle) + "|" + strings.ToLower(sectionName)
			if seenSections[key] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeDuplicateFile,
					Column:       "Section Name",
					InvalidValue: sectionName,
					Message:      fmt.Sprintf("Section '%s' appears multiple times for form '%s'.", sectionName, formTitle),
				})
			} else {
				seenSections[key] = true
			}
		}

		// 5. (表单, 章节序号) 查重
		if formTitle != "" && orderValid {
			key := fmt.Sprintf("%s|%d", strings.ToLower(formTitle), orderInt)
			if seenSectionOrders[key] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeDuplicateFile,
					Column:       "Section Order",
					InvalidValue: sectionOrder,
					Message:      fmt.Sprintf("Section Order %s is used multiple times for form '%s'.", sectionOrder, formTitle),
				})
			} else {
				seenSectionOrders[key] = true
			}
		}

		// 6. 简单依赖三列：要么全填，要么全空
		depSection := row.Get("dependency_section")
		depField := row.Get("dependency_field")
		depOption := row.Get("dependency_option")
		hasAnyDep := depSection != "" || depField != "" || depOption != ""
		hasAllDep := depSection != "" && depField != "" && depOption != ""

		if hasAnyDep && !hasAllDep {
			var missingDep []string
			if depSection == "" {
				missingDep = append(missingDep, "Dependency Section")
			}
			if depField == "" {
				missingDep = append(missingDep, "Dependency Field")
			}
			if depOption == "" {
				missingDep = append(missingDep, "Dependency Option")
			}
			errors = append(errors, ValidationError{
				Row:     actualRow,
				Sheet:   SheetSections,
				Type:    ErrTypeMissingData,
				Message: fmt.Sprintf("When using simple dependency, all three columns must be filled: %s", strings.Join(missingDep, ", ")),
			})
		} else if hasAllDep {
			// 依赖章节必须在同一表单中
			if formTitle != "" {
				if sections, ok := sectionsMap[formTitle]; ok && !sections[depSection] {
					errors = append(errors, ValidationError{
						Row:          actualRow,
						Sheet:        SheetSections,
						Type:         ErrTypeInvalidRef,
						Column:       "Dependency Section",
						InvalidValue: depSection,
						Message:      fmt.Sprintf("Dependency section '%s' not found in Sections sheet for form '%s'.", depSection, formTitle),
					})
				}
			}

			// 依赖字段必须在依赖章节中存在，且选项（如有定义）中包含依赖选项
			fieldFound, fieldOptions := findFieldOptions(formTitle, depSection, depField)
			if !fieldFound {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeInvalidRef,
					Column:       "Dependency Field",
					InvalidValue: depField,
					Message:      fmt.Sprintf("Dependency field '%s' not found in section '%s' in Fields sheet.", depField, depSection),
				})
			} else if len(fieldOptions) > 0 && !containsExact(fieldOptions, depOption) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeInvalidRef,
					Column:       "Dependency Option",
					InvalidValue: depOption,
					Message:      fmt.Sprintf("Dependency option '%s' not found in field '%s' options: %v", depOption, depField, fieldOptions),
				})
			}
		}

		// 7. JSON 依赖格式（仅在未使用简单三列时校验）
		if dependency := row.Get("dependency"); dependency != "" && !hasAllDep {
			if !IsValidJSON(dependency) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetSections,
					Type:         ErrTypeInvalidFormat,
					Column:       "Dependency (JSON)",
					InvalidValue: dependency,
					Message:      "Invalid JSON format for Dependency field.",
				})
			}
		}
	}

	// =========================
	// 校验 Fields 表
	// =========================
	for idx, row := range data.Fields {
		actualRow := idx + 4
		formTitle := row.Get("form_title")
		sectionName := row.Get("section_name")

		// 1. 必填列
		var missing []string
		for _, field := range requiredFields["fields"] {
			if !row.Has(field) {
				missing = append(missing, OriginalColumnName(field))
			}
		}
		if len(missing) > 0 {
			errors = append(errors, ValidationError{
				Row:     actualRow,
				Sheet:   SheetFields,
				Type:    ErrTypeMissingData,
				Message: fmt.Sprintf("Missing required data in column(s): %s", strings.Join(missing, ", ")),
			})
		}

		// 2. form_title 必须出现在 Forms 表
		if formTitle != "" && !formTitlesInFile[formTitle] {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidRef,
				Column:       "Form Title",
				InvalidValue: formTitle,
				Message:      fmt.Sprintf("Form '%s' not found in Forms sheet.", formTitle),
			})
		}

		// 3. section_name 必须在 Sections 表中属于该表单
		if formTitle != "" && sectionName != "" {
			if sections, ok := sectionsMap[formTitle]; ok && !sections[sectionName] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeInvalidRef,
					Column:       "Section Name",
					InvalidValue: sectionName,
					Message:      fmt.Sprintf("Section '%s' not found for form '%s' in Sections sheet.", sectionName, formTitle),
				})
			}
		}

		// 4. 下拉值：field_type 与 data_type
		fieldType := row.Get("field_type")
		if fieldType != "" && !containsFold(lookups.FieldTypes, fieldType) {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidDropdown,
				Column:       "Field Type",
				InvalidValue: fieldType,
				Message:      fmt.Sprintf("'%s' is not a valid Field Type. Must be selected from dropdown.", fieldType),
			})
		}

		dataType := row.Get("data_type")
		if dataType != "" && !containsFold(lookups.DataTypes, dataType) {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidDropdown,
				Column:       "Data Type",
				InvalidValue: dataType,
				Message:      fmt.Sprintf("'%s' is not a valid Data Type. Must be selected from dropdown.", dataType),
			})
		}

		// 5. 字段类型与数据类型兼容性
		if fieldType != "" && dataType != "" {
			if expected, ok := lookups.FieldTypeDataType[fieldType]; ok && !strings.EqualFold(expected, dataType) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeIncompatible,
					Column:       "Data Type",
					InvalidValue: dataType,
					Message:      fmt.Sprintf("Field Type '%s' requires Data Type '%s', but '%s' was provided.", fieldType, expected, dataType),
				})
			}
		}

		// 6. field_order 必须是正整数
		fieldOrder := row.Get("field_order")
		orderValid := false
		var orderInt int
		if fieldOrder != "" {
			var err error
			orderInt, err = ParseOrder(fieldOrder)
			if err != nil {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeInvalidFormat,
					Column:       "Field Order",
					InvalidValue: fieldOrder,
					Message:      "Field Order must be a valid integer.",
				})
			} else if orderInt <= 0 {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeInvalidFormat,
					Column:       "Field Order",
					InvalidValue: fieldOrder,
					Message:      "Field Order must be a positive integer.",
				})
			} else {
				orderValid = true
			}
		}

		// 7. (表单, 章节, 标签) 查重
		fieldLabel := row.Get("field_label")
		if formTitle != "" && sectionName != "" && fieldLabel != "" {
			key := strings.ToLower(formTitle) + "|" + strings.ToLower(sectionName) + "|" + strings.ToLower(fieldLabel)
			if seenFields[key] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeDuplicateFile,
					Column:       "Field Label",
					InvalidValue: fieldLabel,
					Message:      fmt.Sprintf("Field '%s' appears multiple times in section '%s' of form '%s'.", fieldLabel, sectionName, formTitle),
				})
			} else {
				seenFields[key] = true
			}
		}

		// 8. (表单, 章节, 字段序号) 查重
		if formTitle != "" && sectionName != "" && orderValid {
			key := fmt.Sprintf("%s|%s|%d", strings.ToLower(formTitle), strings.ToLower(sectionName), orderInt)
			if seenFieldOrders[key] {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeDuplicateFile,
					Column:       "Field Order",
					InvalidValue: fieldOrder,
					Message:      fmt.Sprintf("Field Order %s is used multiple times in section '%s' of form '%s'.", fieldOrder, sectionName, formTitle),
				})
			} else {
				seenFieldOrders[key] = true
			}
		}

		// 9. options JSON 格式
		if options := row.Get("options"); options != "" && !IsValidJSON(options) {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidFormat,
				Column:       "Options",
				InvalidValue: options,
				Message:      `Invalid JSON format. Expected array like: ["Option1","Option2"]`,
			})
		}

		// 10. 简单字段依赖三列：要么全填，要么全空
		fieldDepSection := row.Get("field_dep_section")
		fieldDepField := row.Get("field_dep_field")
		fieldDepOption := row.Get("field_dep_option")
		hasAnyFieldDep := fieldDepSection != "" || fieldDepField != "" || fieldDepOption != ""
		hasAllFieldDep := fieldDepSection != "" && fieldDepField != "" && fieldDepOption != ""

		if hasAnyFieldDep && !hasAllFieldDep {
			var missingDep []string
			if fieldDepSection == "" {
				missingDep = append(missingDep, "Field Dep Section")
			}
			if fieldDepField == "" {
				missingDep = append(missingDep, "Field Dep Field")
			}
			if fieldDepOption == "" {
				missingDep = append(missingDep, "Field Dep Option")
			}
			errors = append(errors, ValidationError{
				Row:     actualRow,
				Sheet:   SheetFields,
				Type:    ErrTypeMissingData,
				Message: fmt.Sprintf("When using simple field dependency, all three columns must be filled: %s", strings.Join(missingDep, ", ")),
			})
		} else if hasAllFieldDep && formTitle != "" {
			if sections, ok := sectionsMap[formTitle]; ok {
				if !sections[fieldDepSection] {
					errors = append(errors, ValidationError{
						Row:          actualRow,
						Sheet:        SheetFields,
						Type:         ErrTypeInvalidRef,
						Column:       "Field Dep Section",
						InvalidValue: fieldDepSection,
						Message:      fmt.Sprintf("Field dependency section '%s' not found in Sections sheet for form '%s'.", fieldDepSection, formTitle),
					})
				}

				depFieldFound, depFieldOptions := findFieldOptions(formTitle, fieldDepSection, fieldDepField)
				if !depFieldFound {
					errors = append(errors, ValidationError{
						Row:          actualRow,
						Sheet:        SheetFields,
						Type:         ErrTypeInvalidRef,
						Column:       "Field Dep Field",
						InvalidValue: fieldDepField,
						Message:      fmt.Sprintf("Field dependency field '%s' not found in section '%s' in Fields sheet.", fieldDepField, fieldDepSection),
					})
				} else if len(depFieldOptions) > 0 && !containsExact(depFieldOptions, fieldDepOption) {
					errors = append(errors, ValidationError{
						Row:          actualRow,
						Sheet:        SheetFields,
						Type:         ErrTypeInvalidRef,
						Column:       "Field Dep Option",
						InvalidValue: fieldDepOption,
						Message:      fmt.Sprintf("Field dependency option '%s' not found in field '%s' options: %v", fieldDepOption, fieldDepField, depFieldOptions),
					})
				}
			}
		}

		// 11. JSON 依赖格式（仅在未使用简单三列时校验）
		if dependency := row.Get("field_dependency"); dependency != "" && !hasAllFieldDep {
			if !IsValidJSON(dependency) {
				errors = append(errors, ValidationError{
					Row:          actualRow,
					Sheet:        SheetFields,
					Type:         ErrTypeInvalidFormat,
					Column:       "Dependency",
					InvalidValue: dependency,
					Message:      "Invalid JSON format for Dependency field.",
				})
			}
		}

		// 12. additional_info JSON 格式
		if additionalInfo := row.Get("additional_info"); additionalInfo != "" && !IsValidJSON(additionalInfo) {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidFormat,
				Column:       "Additional Info",
				InvalidValue: additionalInfo,
				Message:      "Invalid JSON format for Additional Info field.",
			})
		}

		// 13. required 布尔格式
		if required := row.Get("required"); required != "" && !IsValidBooleanToken(required) {
			errors = append(errors, ValidationError{
				Row:          actualRow,
				Sheet:        SheetFields,
				Type:         ErrTypeInvalidFormat,
				Column:       "Required",
				InvalidValue: required,
				Message:      fmt.Sprintf("'%s' is not a valid boolean. Use TRUE or FALSE.", required),
			})
		}
	}

	return errors
}

func containsExact(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
