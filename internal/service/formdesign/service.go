package formdesign

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/fisker/nexforms-backend/internal/model"
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/logger"
	"github.com/fisker/nexforms-backend/pkg/metrics"
)

// Service 表单设计服务：表单的创建、查询、结构保存与版本管理。
// 被工作流引用的表单保存时产生新版本，否则原地重建章节和字段
type Service struct {
	formRepo     *repository.FormRepository
	formTypeRepo *repository.FormTypeRepository
	categoryRepo *repository.CategoryRepository
	linkage      WorkflowLinkage
}

func NewService(
	formRepo *repository.FormRepository,
	formTypeRepo *repository.FormTypeRepository,
	categoryRepo *repository.CategoryRepository,
	linkage WorkflowLinkage,
) *Service {
	return &Service{
		formRepo:     formRepo,
		formTypeRepo: formTypeRepo,
		categoryRepo: categoryRepo,
		linkage:      linkage,
	}
}

// CreateForm 新建表单并初始化空草稿
func (s *Service) CreateForm(input *CreateFormInput, username string) (*model.Form, error) {
	formType, err := s.formTypeRepo.FindActiveByID(input.TypeID)
	if err != nil {
		// type_id 也允许传 unique_code
		formType, err = s.formTypeRepo.FindActiveByCode(input.TypeID)
		if err != nil {
			return nil, ErrFormTypeNotFound
		}
	}

	form := &model.Form{
		Title:       input.Title,
		FormTypeID:  formType.ID,
		Description: input.Desc,
	}
	form.CreatedBy = username
	if input.SystemConfig != nil {
		form.SystemConfig = mustJSON(input.SystemConfig)
	}
	if input.UserConfig != nil {
		form.UserConfig = mustJSON(input.UserConfig)
	}
	if input.MainProcess != "" {
		mp, err := s.categoryRepo.FindMainProcessByID(input.MainProcess)
		if err != nil {
			return nil, ErrFormNotFound
		}
		form.MainProcessID = &mp.ID
	}
	if input.Criteria != "" {
		criteria, err := s.categoryRepo.FindCriteriaByID(input.Criteria)
		if err != nil {
			return nil, ErrFormNotFound
		}
		form.CriteriaID = &criteria.ID
	}
	if input.Location != "" {
		form.LocationID = &input.Location
	}

	err = s.formRepo.Transaction(func(txRepo *repository.FormRepository) error {
		if err := txRepo.CreateForm(form); err != nil {
			return err
		}
		_, err := txRepo.UpsertDraft(form.ID, datatypes.JSON("{}"))
		return err
	})
	if err != nil {
		return nil, err
	}

	form.FormType = formType
	logger.Sugar.Infof("表单已创建: %s (%s)", form.Title, form.UniqueCode)
	return form, nil
}

// checkVersionLock 乐观锁校验：version_id 必须指向当前有效版本，
// 且该版本属于正在编辑的表单
func (s *Service) checkVersionLock(form *model.Form, versionID string) error {
	if versionID == "" {
		return ErrVersionIDRequired
	}
	current, err := s.formRepo.FindActiveByID(versionID)
	if err != nil {
		return ErrVersionConflict
	}
	if current.ID != form.ID && current.UniqueCode != form.UniqueCode {
		return ErrVersionMismatch
	}
	return nil
}

// resolveFormType 按 unique_code 或 UUID 解析 form_details 里的表单类型
func (s *Service) resolveFormType(identifier string) (*model.FormType, error) {
	if identifier == "" {
		return nil, nil
	}
	formType, err := s.formTypeRepo.FindActiveByCode(identifier)
	if err == nil {
		return formType, nil
	}
	formType, err = s.formTypeRepo.FindActiveByID(identifier)
	if err != nil {
		return nil, ErrFormTypeNotFound
	}
	return formType, nil
}

// createFields 递归创建字段树，子字段通过 parent_field 挂在父字段下
func createFields(txRepo *repository.FormRepository, fields []FieldInput, section *model.FormSection, parentID *string) error {
	for idx, input := range fields {
		dependency := datatypes.JSON(input.Dependency)
		if len(dependency) == 0 {
			dependency = datatypes.JSON("{}")
		}

		field := &model.FormField{
			Label:          input.Label,
			Name:           input.Name,
			FieldTypeID:    input.TypeID,
			SectionID:      section.ID,
			Required:       input.Required,
			Order:          idx,
			AdditionalInfo: mustJSON(input.Extra),
			ParentFieldID:  parentID,
			Dependency:     dependency,
		}
		if err := txRepo.CreateField(field); err != nil {
			return err
		}

		if len(input.Fields) > 0 {
			if err := createFields(txRepo, input.Fields, section, &field.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveFormFields 保存表单结构。rawBody 为原始请求体，将整体存入草稿
func (s *Service) SaveFormFields(formID string, input *SaveFieldsInput, rawBody []byte, username string) (*SaveResult, error) {
	form, err := s.formRepo.FindActiveByCodeOrID(formID)
	if err != nil {
		return nil, ErrFormNotFound
	}

	if err := s.checkVersionLock(form, input.VersionID); err != nil {
		return nil, err
	}

	formType, err := s.resolveFormType(input.FormDetails.FormType)
	if err != nil {
		return nil, err
	}

	for _, section := range input.Sections {
		if section.SectionName == "" {
			return nil, ErrSectionNameRequired
		}
	}

	linked, err := s.linkage.IsLinked(form.ID)
	if err != nil {
		return nil, err
	}

	var result *SaveResult
	if linked {
		result, err = s.saveAsNewVersion(form, formType, input, rawBody, username, true)
	} else {
		result, err = s.saveInPlace(form, formType, input, rawBody)
	}
	if err != nil {
		return nil, err
	}
	if result.NewVersion {
		metrics.FormVersionForksTotal.Inc()
	}
	return result, nil
}

// saveAsNewVersion SCD Type 2 分叉：旧版本保持有效，新版本接到谱系末端
func (s *Service) saveAsNewVersion(form *model.Form, formType *model.FormType, input *SaveFieldsInput, rawBody []byte, username string, complete bool) (*SaveResult, error) {
	rootID := repository.LineageKey(form)

	var result *SaveResult
	err := s.formRepo.Transaction(func(txRepo *repository.FormRepository) error {
		rootForm, err := txRepo.FindByID(rootID)
		if err != nil {
			return err
		}

		maxVersion, err := txRepo.MaxVersion(rootID)
		if err != nil {
			return err
		}
		if maxVersion < 1 {
			maxVersion = 1
		}

		title := input.FormDetails.Title
		if title == "" {
			title = rootForm.Title
		}
		description := form.Description
		if input.FormDetails.Description != nil {
			description = *input.FormDetails.Description
		}
		formTypeID := form.FormTypeID
		if formType != nil {
			formTypeID = formType.ID
		}

		newForm := &model.Form{
			Title:         title,
			FormTypeID:    formTypeID,
			Description:   description,
			MainProcessID: form.MainProcessID,
			CriteriaID:    form.CriteriaID,
			LocationID:    form.LocationID,
			ParentFormID:  &form.ID,
			RootFormID:    &rootID,
			Version:       maxVersion + 1,
			IsCompleted:   false,
		}
		newForm.CreatedBy = username
		newForm.PreviousVersionID = &form.ID
		if input.SystemConfig != nil {
			newForm.SystemConfig = mustJSON(input.SystemConfig)
		}
		if input.UserConfig != nil {
			newForm.UserConfig = mustJSON(input.UserConfig)
		}
		if err := txRepo.CreateForm(newForm); err != nil {
			return err
		}

		draft, err := txRepo.UpsertDraft(newForm.ID, datatypes.JSON(rawBody))
		if err != nil {
			return err
		}

		if err := createSectionTree(txRepo, newForm, input.Sections); err != nil {
			return err
		}

		if complete {
			newForm.IsCompleted = true
			if err := txRepo.UpdateForm(newForm); err != nil {
				return err
			}
		}

		result = &SaveResult{
			FormDraftID: draft.ID,
			FormID:      newForm.ID,
			Version:     newForm.Version,
			VersionID:   newForm.ID,
			UniqueCode:  newForm.UniqueCode,
			NewVersion:  true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infof("表单 %s 已分叉出新版本 v%d (%s)", form.UniqueCode, result.Version, result.FormID)
	return result, nil
}

// saveInPlace 未被工作流引用：更新元数据并整体重建章节和字段
func (s *Service) saveInPlace(form *model.Form, formType *model.FormType, input *SaveFieldsInput, rawBody []byte) (*SaveResult, error) {
	var result *SaveResult
	err := s.formRepo.Transaction(func(txRepo *repository.FormRepository) error {
		if input.FormDetails.Title != "" {
			form.Title = input.FormDetails.Title
		}
		if input.FormDetails.Description != nil {
			form.Description = *input.FormDetails.Description
		}
		if formType != nil {
			form.FormTypeID = formType.ID
		}
		if input.SystemConfig != nil {
			form.SystemConfig = mustJSON(input.SystemConfig)
		}
		if input.UserConfig != nil {
			form.UserConfig = mustJSON(input.UserConfig)
		}

		if err := txRepo.DeleteSectionTree(form.ID); err != nil {
			return err
		}

		if err := createSectionTree(txRepo, form, input.Sections); err != nil {
			return err
		}

		form.IsCompleted = true
		if err := txRepo.UpdateForm(form); err != nil {
			return err
		}

		draft, err := txRepo.UpsertDraft(form.ID, datatypes.JSON(rawBody))
		if err != nil {
			return err
		}

		result = &SaveResult{
			FormDraftID: draft.ID,
			FormID:      form.ID,
			Version:     form.Version,
			VersionID:   form.ID,
			UniqueCode:  form.UniqueCode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infof("表单 %s 的字段已原地更新", form.UniqueCode)
	return result, nil
}

func createSectionTree(txRepo *repository.FormRepository, form *model.Form, sections []SectionInput) error {
	for idx, sectionData := range sections {
		dependency := datatypes.JSON(sectionData.Dependency)
		if len(dependency) == 0 {
			dependency = datatypes.JSON("{}")
		}

		section := &model.FormSection{
			FormID:     form.ID,
			Name:       sectionData.SectionName,
			Order:      idx + 1,
			Dependency: dependency,
		}
		if err := txRepo.CreateSection(section); err != nil {
			return err
		}
		if err := createFields(txRepo, sectionData.Fields, section, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteForm 逻辑删除表单。被工作流引用的表单拒绝删除
func (s *Service) DeleteForm(pk string) error {
	form, err := s.formRepo.FindActiveByCodeOrID(pk)
	if err != nil {
		return ErrFormNotFound
	}

	linked, err := s.linkage.IsLinked(form.ID)
	if err != nil {
		return err
	}
	if linked {
		return ErrFormLinkedWorkflow
	}

	if err := s.formRepo.EndDateForm(form, time.Now()); err != nil {
		return err
	}
	logger.Sugar.Infof("表单已删除: %s (%s)", form.Title, form.UniqueCode)
	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
