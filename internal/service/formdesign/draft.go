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

// GetFormDraft 获取表单草稿。version 非空时取谱系内指定版本的草稿
func (s *Service) GetFormDraft(formID string, version *int) (map[string]interface{}, error) {
	form, err := s.formRepo.FindActiveByCodeOrID(formID)
	if err != nil {
		form, err = s.formRepo.FindByID(formID)
		if err != nil {
			return nil, ErrFormNotFound
		}
	}

	if version != nil {
		form, err = s.formRepo.VersionInLineage(repository.LineageKey(form), *version)
		if err != nil {
			return nil, ErrVersionNotFound
		}
	}

	draft, err := s.formRepo.DraftByFormID(form.ID)
	if err != nil {
		return nil, ErrDraftNotFound
	}

	formType, _ := s.formTypeRepo.FindActiveByID(form.FormTypeID)
	typeName := interface{}(nil)
	if formType != nil {
		typeName = formType.Name
	}

	var mainProcess, criteria interface{}
	if form.MainProcessID != nil {
		if mp, err := s.categoryRepo.FindMainProcessByID(*form.MainProcessID); err == nil {
			mainProcess = map[string]interface{}{"id": mp.ID, "name": mp.Name}
		}
	}
	if form.CriteriaID != nil {
		if c, err := s.categoryRepo.FindCriteriaByID(*form.CriteriaID); err == nil {
			criteria = map[string]interface{}{"id": c.ID, "name": c.Name}
		}
	}

	var draftData interface{}
	if len(draft.DraftData) > 0 {
		_ = json.Unmarshal(draft.DraftData, &draftData)
	}
	if draftData == nil {
		draftData = map[string]interface{}{}
	}

	return map[string]interface{}{
		"draft_data": draftData,
		"form_details": map[string]interface{}{
			"title":        form.Title,
			"form_type":    typeName,
			"description":  form.Description,
			"version":      form.Version,
			"created_on":   form.CreatedOn.Format(time.RFC3339),
			"main_process": mainProcess,
			"criteria":     criteria,
		},
	}, nil
}

// SaveFormDraft 自动保存设计器草稿。被工作流引用的表单分叉出
// is_completed=false 的新草稿版本，否则只更新元数据和草稿内容
func (s *Service) SaveFormDraft(formID string, input *SaveDraftInput, username string) (*SaveResult, error) {
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

	linked, err := s.linkage.IsLinked(form.ID)
	if err != nil {
		return nil, err
	}

	draftJSON := mustJSON(input.DraftData)

	var result *SaveResult
	if linked {
		result, err = s.forkDraftVersion(form, formType, input, draftJSON, username)
	} else {
		result, err = s.updateDraftInPlace(form, formType, input, draftJSON)
	}
	if err != nil {
		return nil, err
	}
	metrics.FormDraftSavesTotal.Inc()
	if result.NewVersion {
		metrics.FormVersionForksTotal.Inc()
	}
	return result, nil
}

// forkDraftVersion 分叉出新的草稿版本，不创建章节和字段
func (s *Service) forkDraftVersion(form *model.Form, formType *model.FormType, input *SaveDraftInput, draftJSON datatypes.JSON, username string) (*SaveResult, error) {
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
		if sc, ok := input.DraftData["system_config"].(map[string]interface{}); ok {
			newForm.SystemConfig = mustJSON(sc)
		}
		if uc, ok := input.DraftData["user_config"].(map[string]interface{}); ok {
			newForm.UserConfig = mustJSON(uc)
		}
		if err := txRepo.CreateForm(newForm); err != nil {
			return err
		}

		draft, err := txRepo.UpsertDraft(newForm.ID, draftJSON)
		if err != nil {
			return err
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
	logger.Sugar.Infof("表单 %s 已分叉出草稿版本 v%d", form.UniqueCode, result.Version)
	return result, nil
}

func (s *Service) updateDraftInPlace(form *model.Form, formType *model.FormType, input *SaveDraftInput, draftJSON datatypes.JSON) (*SaveResult, error) {
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
		if sc, ok := input.DraftData["system_config"].(map[string]interface{}); ok && len(sc) > 0 {
			form.SystemConfig = mustJSON(sc)
		}
		if uc, ok := input.DraftData["user_config"].(map[string]interface{}); ok && len(uc) > 0 {
			form.UserConfig = mustJSON(uc)
		}
		if err := txRepo.UpdateForm(form); err != nil {
			return err
		}

		draft, err := txRepo.UpsertDraft(form.ID, draftJSON)
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
	return result, nil
}
