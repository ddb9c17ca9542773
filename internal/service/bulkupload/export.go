package bulkupload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
	"github.com/fisker/nexforms-backend/pkg/metrics"
)

// ErrNoFormsToExport 库中没有可导出的表单
var ErrNoFormsToExport = errors.New("no forms found to export")

var exportSectionsHeaders = []string{
	"Form Title", "Section Name", "Section Description", "Section Order", "Dependency (JSON)",
}

var exportFieldsHeaders = []string{
	"Form Title", "Section Name", "Field Label",
	"Field Type", "Data Type", "Required", "Field Order",
	"Width", "Options", "Parent Field", "Dependency", "Additional Info",
}

// 存储宽度值到模板下拉显示值的映射
var widthDisplayMap = map[string]string{
	"25":  "25% (1/4)",
	"33":  "33% (1/3)",
	"50":  "50% (1/2)",
	"66":  "66% (2/3)",
	"75":  "75% (3/4)",
	"100": "100% (Full)",
}

func widthDisplay(width string) string {
	if display, ok := widthDisplayMap[width]; ok {
		return display
	}
	return width + "%"
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// fieldInfoValue 从 additional_info 里取键值，字段无附加信息时返回空
func fieldInfoValue(info map[string]interface{}, key string) interface{} {
	if info == nil {
		return nil
	}
	return info[key]
}

// ExportForms 导出所有表单的最新版本为与导入模板同构的 Excel 文件，
// 可直接上传到另一套部署环境。返回文件内容和带时间戳的文件名
func (s *Service) ExportForms() ([]byte, string, error) {
	forms, err := s.formRepo.LatestVersions(repository.FormFilters{})
	if err != nil {
		return nil, "", err
	}
	if len(forms) == 0 {
		return nil, "", ErrNoFormsToExport
	}

	sort.SliceStable(forms, func(i, j int) bool {
		return forms[i].Title < forms[j].Title
	})

	formTypeMap, err := s.formTypeRepo.ActiveNameMap()
	if err != nil {
		return nil, "", err
	}
	formTypes := sortedKeys(formTypeMap)

	fieldTypeMap, err := s.fieldTypeRepo.FieldTypeDataTypeMap()
	if err != nil {
		return nil, "", err
	}
	fieldTypes := sortedKeys(fieldTypeMap)

	dataTypeModels, err := s.fieldTypeRepo.ListDataTypes()
	if err != nil {
		return nil, "", err
	}
	dataTypes := make([]string, 0, len(dataTypeModels))
	for _, dt := range dataTypeModels {
		dataTypes = append(dataTypes, dt.Name)
	}
	sort.Strings(dataTypes)

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, "", err
	}

	// Sheet 1: Forms
	f.SetSheetName("Sheet1", SheetForms)
	if err := writeSheetHeader(f, SheetForms,
		"Bulk Upload Forms - Data Export",
		"NOTE: This file contains exported data (latest versions only) from the database. You can upload it to another deployment.",
		formsHeaders, styles); err != nil {
		return nil, "", err
	}
	setColWidths(f, SheetForms, []float64{30, 25, 40, 15})

	rowNum := templateStartRow
	for _, form := range forms {
		typeName := ""
		if form.FormType != nil {
			typeName = form.FormType.Name
		}
		f.SetCellValue(SheetForms, fmt.Sprintf("A%d", rowNum), form.Title)
		f.SetCellValue(SheetForms, fmt.Sprintf("B%d", rowNum), typeName)
		f.SetCellValue(SheetForms, fmt.Sprintf("C%d", rowNum), form.Description)
		f.SetCellValue(SheetForms, fmt.Sprintf("D%d", rowNum), boolCell(form.IsCompleted))
		rowNum++
	}

	dupFormat := styles.duplicate
	if err := f.SetConditionalFormat(SheetForms, "A4:A103", []excelize.ConditionalFormatOptions{
		{Type: "duplicate", Criteria: "=", Format: &dupFormat},
	}); err != nil {
		return nil, "", err
	}

	// Sheet 2: Sections
	if _, err := f.NewSheet(SheetSections); err != nil {
		return nil, "", err
	}
	if err := writeSheetHeader(f, SheetSections,
		"Form Sections",
		"NOTE: Select Form Title from dropdown. Section Order must be unique within each form.",
		exportSectionsHeaders, styles); err != nil {
		return nil, "", err
	}
	setColWidths(f, SheetSections, []float64{30, 30, 40, 15, 40})

	type sectionWithFields struct {
		section model.FormSection
		fields  []model.FormField
	}
	formSections := make(map[string][]sectionWithFields)

	rowNum = templateStartRow
	sectionsCount := 0
	for _, form := range forms {
		sections, err := s.formRepo.SectionsByFormID(form.ID)
		if err != nil {
			return nil, "", err
		}
		// 导出时章节序号按出现顺序重新编号，保证导入时连续
		for idx, section := range sections {
			f.SetCellValue(SheetSections, fmt.Sprintf("A%d", rowNum), form.Title)
			f.SetCellValue(SheetSections, fmt.Sprintf("B%d", rowNum), section.Name)
			f.SetCellValue(SheetSections, fmt.Sprintf("C%d", rowNum), section.Description)
			f.SetCellValue(SheetSections, fmt.Sprintf("D%d", rowNum), idx+1)
			if len(section.Dependency) > 0 {
				f.SetCellValue(SheetSections, fmt.Sprintf("E%d", rowNum), string(section.Dependency))
			}
			rowNum++
			sectionsCount++

			fields, err := s.formRepo.FieldsBySectionID(section.ID)
			if err != nil {
				return nil, "", err
			}
			formSections[form.ID] = append(formSections[form.ID], sectionWithFields{section: section, fields: fields})
		}
	}

	// Sheet 3: Fields
	if _, err := f.NewSheet(SheetFields); err != nil {
		return nil, "", err
	}
	if err := writeSheetHeader(f, SheetFields,
		"Form Fields",
		"NOTE: Select Form Title, Section Name, Field Type, Data Type, and Width from dropdowns. "+
			`Options should be JSON array like: ["Option1","Option2"]. Field Name will be auto-generated.`,
		exportFieldsHeaders, styles); err != nil {
		return nil, "", err
	}
	setColWidths(f, SheetFields, []float64{30, 25, 25, 20, 20, 12, 12, 15, 30, 25, 30, 30})

	writeFieldRow := func(row int, form *model.Form, section *model.FormSection, field *model.FormField, order int, parentLabel string) {
		fieldTypeName := ""
		dataTypeName := ""
		if field.FieldType != nil {
			fieldTypeName = field.FieldType.Name
			if field.FieldType.DataType != nil {
				dataTypeName = field.FieldType.DataType.Name
			}
		}

		info := decodeInfo(field.AdditionalInfo)
		width := "100"
		if w, ok := fieldInfoValue(info, "width").(string); ok && w != "" {
			width = w
		}

		f.SetCellValue(SheetFields, fmt.Sprintf("A%d", row), form.Title)
		f.SetCellValue(SheetFields, fmt.Sprintf("B%d", row), section.Name)
		f.SetCellValue(SheetFields, fmt.Sprintf("C%d", row), field.Label)
		f.SetCellValue(SheetFields, fmt.Sprintf("D%d", row), fieldTypeName)
		f.SetCellValue(SheetFields, fmt.Sprintf("E%d", row), dataTypeName)
		f.SetCellValue(SheetFields, fmt.Sprintf("F%d", row), boolCell(field.Required))
		f.SetCellValue(SheetFields, fmt.Sprintf("G%d", row), order)
		f.SetCellValue(SheetFields, fmt.Sprintf("H%d", row), widthDisplay(width))
		if options := fieldInfoValue(info, "options"); options != nil {
			f.SetCellValue(SheetFields, fmt.Sprintf("I%d", row), string(marshalJSON(options)))
		}
		f.SetCellValue(SheetFields, fmt.Sprintf("J%d", row), parentLabel)
		if len(field.Dependency) > 0 {
			f.SetCellValue(SheetFields, fmt.Sprintf("K%d", row), string(field.Dependency))
		}
		// width 和 options 已拆成独立列，附加信息里不再重复
		if info != nil {
			filtered := make(map[string]interface{})
			for k, v := range info {
				if k != "width" && k != "options" {
					filtered[k] = v
				}
			}
			if len(filtered) > 0 {
				f.SetCellValue(SheetFields, fmt.Sprintf("L%d", row), string(marshalJSON(filtered)))
			}
		}
	}

	rowNum = templateStartRow
	fieldsCount := 0
	for _, form := range forms {
		for _, sf := range formSections[form.ID] {
			// 父字段在前，子字段紧随其父字段之后
			childByParent := make(map[string][]model.FormField)
			var parents []model.FormField
			for _, field := range sf.fields {
				if field.ParentFieldID != nil {
					childByParent[*field.ParentFieldID] = append(childByParent[*field.ParentFieldID], field)
				} else {
					parents = append(parents, field)
				}
			}

			orderCounter := 1
			for i := range parents {
				parent := parents[i]
				writeFieldRow(rowNum, &form, &sf.section, &parent, orderCounter, "")
				rowNum++
				orderCounter++
				fieldsCount++

				for j := range childByParent[parent.ID] {
					child := childByParent[parent.ID][j]
					writeFieldRow(rowNum, &form, &sf.section, &child, orderCounter, parent.Label)
					rowNum++
					orderCounter++
					fieldsCount++
				}
			}
		}
	}

	// Sheet 4: References（隐藏）
	if err := writeReferencesSheet(f, formTypes, fieldTypes, dataTypes, "Required"); err != nil {
		return nil, "", err
	}

	// 下拉校验：保持与模板一致，导出文件可直接二次导入
	if len(formTypes) > 0 {
		formula := fmt.Sprintf("References!$A$2:$A$%d", len(formTypes)+1)
		if err := addDropList(f, SheetForms, headerIndex(formsHeaders, "Form Type"), formula, false); err != nil {
			return nil, "", err
		}
	}
	if err := addDropListWithError(f, SheetSections, headerIndex(exportSectionsHeaders, "Form Title"),
		"OFFSET(Forms!$A$4,0,0,COUNTA(Forms!$A$4:$A$103),1)",
		"Invalid Form Title", "Please select a Form Title from the Forms sheet"); err != nil {
		return nil, "", err
	}
	if err := addDropListWithError(f, SheetFields, headerIndex(exportFieldsHeaders, "Form Title"),
		"OFFSET(Forms!$A$4,0,0,COUNTA(Forms!$A$4:$A$103),1)",
		"Invalid Form Title", "Please select a Form Title from the Forms sheet"); err != nil {
		return nil, "", err
	}
	if err := addDropListWithError(f, SheetFields, headerIndex(exportFieldsHeaders, "Section Name"),
		"OFFSET(Sections!$B$4,0,0,COUNTA(Sections!$B$4:$B$103),1)",
		"Invalid Section Name", "Please select a Section Name from the Sections sheet"); err != nil {
		return nil, "", err
	}
	if len(fieldTypes) > 0 {
		formula := fmt.Sprintf("References!$B$2:$B$%d", len(fieldTypes)+1)
		if err := addDropList(f, SheetFields, headerIndex(exportFieldsHeaders, "Field Type"), formula, false); err != nil {
			return nil, "", err
		}
	}
	if len(dataTypes) > 0 {
		formula := fmt.Sprintf("References!$C$2:$C$%d", len(dataTypes)+1)
		if err := addDropList(f, SheetFields, headerIndex(exportFieldsHeaders, "Data Type"), formula, false); err != nil {
			return nil, "", err
		}
	}
	if err := addDropList(f, SheetFields, headerIndex(exportFieldsHeaders, "Required"), "References!$D$2:$D$3", true); err != nil {
		return nil, "", err
	}
	if err := addDropList(f, SheetFields, headerIndex(exportFieldsHeaders, "Width"), "References!$E$2:$E$7", true); err != nil {
		return nil, "", err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("Forms_Export_%s.xlsx", time.Now().Format("20060102_150405"))
	metrics.FormExportsTotal.Inc()
	logger.Sugar.Infof("表单导出完成: %d 个表单, %d 个章节, %d 个字段", len(forms), sectionsCount, fieldsCount)
	return buf.Bytes(), filename, nil
}

func decodeInfo(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var info map[string]interface{}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil
	}
	return info
}
