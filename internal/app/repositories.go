package app

import (
	"github.com/fisker/nexforms-backend/internal/repository"
	"github.com/fisker/nexforms-backend/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	FormType  *repository.FormTypeRepository
	FieldType *repository.FieldTypeRepository
	Category  *repository.CategoryRepository
	Form      *repository.FormRepository
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	return &Repositories{
		FormType:  repository.NewFormTypeRepository(database.DB),
		FieldType: repository.NewFieldTypeRepository(database.DB),
		Category:  repository.NewCategoryRepository(database.DB),
		Form:      repository.NewFormRepository(database.DB),
	}
}
