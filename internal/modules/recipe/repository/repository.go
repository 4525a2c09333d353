package repository

import (
	"context"
	"strings"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var updatableColumns = []string{
	"title", "description", "ingredients", "instructions", "cooking_time",
	"serving_size", "difficulty_level", "category_id", "image_url", "updated_at",
}

type RecipeFilter struct {
	CategoryID uint
	UserID     uint
	Difficulty string
	Search     string
	// IDs restricts the result to the given recipes, in any order. A non-nil empty slice matches nothing.
	IDs   []uint
	Page  int
	Limit int
}

type RecipeRepository interface {
	WithTx(tx *gorm.DB) RecipeRepository
	Create(ctx context.Context, recipe *entity.Recipe) error
	FindByID(ctx context.Context, id uint) (*entity.Recipe, error)
	FindAll(ctx context.Context, filter RecipeFilter) ([]*entity.Recipe, int64, error)
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Recipe, error)
	Update(ctx context.Context, recipe *entity.Recipe) error
	Delete(ctx context.Context, id uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	Count(ctx context.Context) (int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepository{db: tx}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "profile_picture")
		}).
		Preload("Category", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		})
}

func (r *recipeRepository) Create(ctx context.Context, recipe *entity.Recipe) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error
	return apperror.FromStorage(err, "recipe")
}

func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*entity.Recipe, error) {
	var recipe entity.Recipe
	if err := withRelations(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "recipe")
	}
	return &recipe, nil
}

func (r *recipeRepository) filtered(ctx context.Context, filter RecipeFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Recipe{})

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty_level = ?", filter.Difficulty)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?)", like, like)
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", append([]uint{0}, filter.IDs...))
	}

	return query
}

func (r *recipeRepository) FindAll(ctx context.Context, filter RecipeFilter) ([]*entity.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "recipe")
	}

	query := withRelations(r.filtered(ctx, filter)).Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var recipes []*entity.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "recipe")
	}
	return recipes, total, nil
}

func (r *recipeRepository) FindByUserID(ctx context.Context, userID uint) ([]*entity.Recipe, error) {
	var recipes []*entity.Recipe
	err := withRelations(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "recipe")
	}
	return recipes, nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *entity.Recipe) error {
	err := r.db.WithContext(ctx).
		Model(recipe).
		Select(updatableColumns).
		Updates(recipe).Error
	return apperror.FromStorage(err, "recipe")
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Recipe{}, id)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "recipe")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("recipe not found")
	}
	return nil
}

func (r *recipeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Recipe{}).Error
	return apperror.FromStorage(err, "recipe")
}

func (r *recipeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Recipe{}).Count(&count).Error; err != nil {
		return 0, apperror.FromStorage(err, "recipe")
	}
	return count, nil
}
