package repository

import (
	"time"

	"github.com/fisker/nexforms-backend/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormFilters 表单列表查询条件
type FormFilters struct {
	Search        string
	IsCompleted   *bool
	FormTypeID    string
	MainProcessID string
	CriteriaID    string
	LocationID    string
}

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Transaction 在事务中执行，fn 拿到绑定事务的仓库实例
func (r *FormRepository) Transaction(fn func(txRepo *FormRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&FormRepository{db: tx})
	})
}

// ---------- Form ----------

// CreateForm 创建表单，自动生成 ID、unique_code 和根节点指向
func (r *FormRepository) CreateForm(form *model.Form) error {
	if form.ID == "" {
		form.ID = model.NewID()
	}
	if form.UniqueCode == "" {
		form.UniqueCode = model.NewUniqueCode(model.CodePrefixForm)
	}
	// 首个版本的根节点指向自身
	if form.RootFormID == nil {
		form.RootFormID = &form.ID
	}
	return r.db.Create(form).Error
}

// FindActiveByCodeOrID 先按 unique_code 查找，失败后回退按 UUID 查找
func (r *FormRepository) FindActiveByCodeOrID(pk string) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("unique_code = ? AND effective_end_date IS NULL", pk).First(&form).Error
	if err == nil {
		return &form, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	err = r.db.Where("id = ? AND effective_end_date IS NULL", pk).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// FindActiveByID 根据主键查找当前有效版本
func (r *FormRepository) FindActiveByID(id string) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("id = ? AND effective_end_date IS NULL", id).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// FindByID 根据主键查找（不限制有效性，历史版本可查）
func (r *FormRepository) FindByID(id string) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("id = ?", id).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ActiveFormByTitle 按标题（忽略大小写）查找有效表单
func (r *FormRepository) ActiveFormByTitle(title string) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("LOWER(title) = LOWER(?) AND effective_end_date IS NULL", title).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ActiveTitleSet 有效表单标题集合（小写，批量导入查重用）
func (r *FormRepository) ActiveTitleSet() (map[string]bool, error) {
	var titles []string
	if err := r.db.Model(&model.Form{}).
		Where("effective_end_date IS NULL").
		Pluck("LOWER(title)", &titles).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(titles))
	for _, t := range titles {
		set[t] = true
	}
	return set, nil
}

// ListActive 查询所有有效表单（带类型），支持过滤
func (r *FormRepository) ListActive(filters FormFilters) ([]model.Form, error) {
	var forms []model.Form
	query := r.db.Preload("FormType").Where("effective_end_date IS NULL")
	if filters.Search != "" {
		query = query.Where("title LIKE ?", "%"+filters.Search+"%")
	}
	if filters.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filters.IsCompleted)
	}
	if filters.FormTypeID != "" {
		query = query.Where("form_type_id = ?", filters.FormTypeID)
	}
	if filters.MainProcessID != "" {
		query = query.Where("main_process_id = ?", filters.MainProcessID)
	}
	if filters.CriteriaID != "" {
		query = query.Where("criteria_id = ?", filters.CriteriaID)
	}
	if filters.LocationID != "" {
		query = query.Where("location_id = ?", filters.LocationID)
	}
	err := query.Order("created_on DESC").Find(&forms).Error
	return forms, err
}

// LineageKey 表单所属血统的键（根表单 ID，根缺失时用自身 ID）
func LineageKey(form *model.Form) string {
	if form.RootFormID != nil && *form.RootFormID != "" {
		return *form.RootFormID
	}
	return form.ID
}

// LatestVersions 每个血统只保留版本号最大的有效表单
func (r *FormRepository) LatestVersions(filters FormFilters) ([]model.Form, error) {
	forms, err := r.ListActive(filters)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]model.Form)
	var order []string
	for _, form := range forms {
		key := LineageKey(&form)
		existing, ok := latest[key]
		if !ok {
			latest[key] = form
			order = append(order, key)
			continue
		}
		if form.Version > existing.Version {
			latest[key] = form
		}
	}
	result := make([]model.Form, 0, len(order))
	for _, key := range order {
		result = append(result, latest[key])
	}
	return result, nil
}

// AllVersions 查询血统内所有版本（含历史），按版本号升序
func (r *FormRepository) AllVersions(rootID string) ([]model.Form, error) {
	var forms []model.Form
	err := r.db.Where("root_form_id = ? OR id = ?", rootID, rootID).
		Order("version ASC").
		Find(&forms).Error
	return forms, err
}

// MaxVersion 血统内的最大版本号（含历史版本）
func (r *FormRepository) MaxVersion(rootID string) (int, error) {
	var maxVersion int
	err := r.db.Model(&model.Form{}).
		Where("root_form_id = ? OR id = ?", rootID, rootID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	return maxVersion, err
}

// ActiveVersionInLineage 血统内当前有效的表单
func (r *FormRepository) ActiveVersionInLineage(rootID string) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("(root_form_id = ? OR id = ?) AND effective_end_date IS NULL", rootID, rootID).
		Order("version DESC").
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// VersionInLineage 血统内指定版本号的表单
func (r *FormRepository) VersionInLineage(rootID string, version int) (*model.Form, error) {
	var form model.Form
	err := r.db.Where("(root_form_id = ? OR id = ?) AND version = ?", rootID, rootID, version).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// UpdateForm 更新表单
func (r *FormRepository) UpdateForm(form *model.Form) error {
	return r.db.Save(form).Error
}

// EndDateForm 软删除 / 退役一个版本
func (r *FormRepository) EndDateForm(form *model.Form, t time.Time) error {
	form.MarkInactive(t)
	return r.db.Model(form).Update("effective_end_date", form.EffectiveEndDate).Error
}

// ---------- Section / Field ----------

// CreateSection 创建章节
func (r *FormRepository) CreateSection(section *model.FormSection) error {
	if section.ID == "" {
		section.ID = model.NewID()
	}
	return r.db.Create(section).Error
}

// UpdateSection 更新章节
func (r *FormRepository) UpdateSection(section *model.FormSection) error {
	return r.db.Save(section).Error
}

// SectionsByFormID 查询表单的有效章节，按顺序排列
func (r *FormRepository) SectionsByFormID(formID string) ([]model.FormSection, error) {
	var sections []model.FormSection
	err := r.db.Where("form_id = ? AND is_deleted = ?", formID, false).
		Order("order_no ASC").
		Find(&sections).Error
	return sections, err
}

// CreateField 创建字段
func (r *FormRepository) CreateField(field *model.FormField) error {
	if field.ID == "" {
		field.ID = model.NewID()
	}
	return r.db.Create(field).Error
}

// UpdateField 更新字段
func (r *FormRepository) UpdateField(field *model.FormField) error {
	return r.db.Save(field).Error
}

// FieldsBySectionID 查询章节的有效字段（带字段类型），按顺序排列
func (r *FormRepository) FieldsBySectionID(sectionID string) ([]model.FormField, error) {
	var fields []model.FormField
	err := r.db.Preload("FieldType.DataType").
		Where("section_id = ? AND is_deleted = ?", sectionID, false).
		Order("order_no ASC").
		Find(&fields).Error
	return fields, err
}

// FieldsByFormID 查询表单全部有效字段（跨章节，带字段类型）
func (r *FormRepository) FieldsByFormID(formID string) ([]model.FormField, error) {
	var fields []model.FormField
	err := r.db.Preload("FieldType.DataType").
		Joins("JOIN form_sections ON form_sections.id = form_fields.section_id").
		Where("form_sections.form_id = ? AND form_sections.is_deleted = ? AND form_fields.is_deleted = ?",
			formID, false, false).
		Order("form_fields.order_no ASC").
		Find(&fields).Error
	return fields, err
}

// DeleteSectionTree 软删除表单的全部章节和字段（原地重建前调用）
func (r *FormRepository) DeleteSectionTree(formID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sectionIDs []string
		if err := tx.Model(&model.FormSection{}).
			Where("form_id = ? AND is_deleted = ?", formID, false).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Model(&model.FormField{}).
				Where("section_id IN (?)", sectionIDs).
				Update("is_deleted", true).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.FormSection{}).
			Where("form_id = ?", formID).
			Update("is_deleted", true).Error
	})
}

// ---------- Draft ----------

// DraftByFormID 查询表单的草稿
func (r *FormRepository) DraftByFormID(formID string) (*model.FormDraft, error) {
	var draft model.FormDraft
	err := r.db.Where("form_id = ? AND is_deleted = ?", formID, false).
		Order("updated_on DESC").
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// UpsertDraft 创建或更新表单草稿
func (r *FormRepository) UpsertDraft(formID string, data datatypes.JSON) (*model.FormDraft, error) {
	var draft model.FormDraft
	err := r.db.Where("form_id = ? AND is_deleted = ?", formID, false).First(&draft).Error
	if err == gorm.ErrRecordNotFound {
		draft = model.FormDraft{
			FormID:    formID,
			DraftData: data,
		}
		draft.ID = model.NewID()
		if err := r.db.Create(&draft).Error; err != nil {
			return nil, err
		}
		return &draft, nil
	}
	if err != nil {
		return nil, err
	}
	draft.DraftData = data
	if err := r.db.Save(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// ---------- Workflow ----------

// FormLinkedToWorkflow 检查表单是否挂在有效工作流上
func (r *FormRepository) FormLinkedToWorkflow(formID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.WorkflowChecklist{}).
		Where("checklist_id = ? AND is_deleted = ?", formID, false).
		Count(&count).Error
	return count > 0, err
}
