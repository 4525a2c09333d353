package repository

import (
	"context"
	"strings"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id uint) (*entity.Category, error)
	FindAll(ctx context.Context, search string) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return apperror.FromStorage(r.db.WithContext(ctx).Create(category).Error, "category")
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "category")
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, search string) ([]*entity.Category, error) {
	var categories []*entity.Category
	query := r.db.WithContext(ctx)

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperror.FromStorage(err, "category")
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	err := r.db.WithContext(ctx).
		Model(category).
		Select("name", "description", "updated_at").
		Updates(category).Error
	return apperror.FromStorage(err, "category")
}

// Delete fails with a referential integrity error while recipes still use the category.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Category{}, id)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("category not found")
	}
	return nil
}

func (r *categoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperror.FromStorage(err, "category")
	}
	return count > 0, nil
}
