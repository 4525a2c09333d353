package repository

import (
	"context"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingSummary struct {
	Average float64
	Count   int64
}

type RatingRepository interface {
	WithTx(tx *gorm.DB) RatingRepository
	Create(ctx context.Context, rating *entity.Rating) error
	FindByID(ctx context.Context, id uint) (*entity.Rating, error)
	FindAll(ctx context.Context) ([]*entity.Rating, error)
	FindByRecipeID(ctx context.Context, recipeID uint) ([]*entity.Rating, error)
	FindByRecipeAndUser(ctx context.Context, recipeID, userID uint) (*entity.Rating, error)
	UpdateValue(ctx context.Context, rating *entity.Rating) error
	Delete(ctx context.Context, id uint) error
	DeleteByRecipeID(ctx context.Context, recipeID uint) error
	DeleteByRecipeOwner(ctx context.Context, ownerID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	SummaryForRecipe(ctx context.Context, recipeID uint) (RatingSummary, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) WithTx(tx *gorm.DB) RatingRepository {
	return &ratingRepository{db: tx}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "profile_picture")
		}).
		Preload("Recipe", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title")
		})
}

// Create fails with a conflict error when the (recipe, user) pair already has a rating.
func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rating).Error
	return apperror.FromStorage(err, "rating")
}

func (r *ratingRepository) FindByID(ctx context.Context, id uint) (*entity.Rating, error) {
	var rating entity.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "rating")
	}
	return &rating, nil
}

func (r *ratingRepository) FindAll(ctx context.Context) ([]*entity.Rating, error) {
	var ratings []*entity.Rating
	if err := withRelations(r.db.WithContext(ctx)).Order("id ASC").Find(&ratings).Error; err != nil {
		return nil, apperror.FromStorage(err, "rating")
	}
	return ratings, nil
}

func (r *ratingRepository) FindByRecipeID(ctx context.Context, recipeID uint) ([]*entity.Rating, error) {
	var ratings []*entity.Rating
	err := withRelations(r.db.WithContext(ctx)).
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "rating")
	}
	return ratings, nil
}

func (r *ratingRepository) FindByRecipeAndUser(ctx context.Context, recipeID, userID uint) (*entity.Rating, error) {
	var rating entity.Rating
	err := r.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		First(&rating).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "rating")
	}
	return &rating, nil
}

func (r *ratingRepository) UpdateValue(ctx context.Context, rating *entity.Rating) error {
	err := r.db.WithContext(ctx).
		Model(rating).
		Select("value", "updated_at").
		Updates(rating).Error
	return apperror.FromStorage(err, "rating")
}

func (r *ratingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Rating{}, id)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "rating")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("rating not found")
	}
	return nil
}

func (r *ratingRepository) DeleteByRecipeID(ctx context.Context, recipeID uint) error {
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&entity.Rating{}).Error
	return apperror.FromStorage(err, "rating")
}

// DeleteByRecipeOwner removes every rating left on recipes owned by ownerID.
func (r *ratingRepository) DeleteByRecipeOwner(ctx context.Context, ownerID uint) error {
	owned := r.db.Model(&entity.Recipe{}).Select("id").Where("user_id = ?", ownerID)
	err := r.db.WithContext(ctx).Where("recipe_id IN (?)", owned).Delete(&entity.Rating{}).Error
	return apperror.FromStorage(err, "rating")
}

func (r *ratingRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Rating{}).Error
	return apperror.FromStorage(err, "rating")
}

func (r *ratingRepository) SummaryForRecipe(ctx context.Context, recipeID uint) (RatingSummary, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Rating{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS total").
		Where("recipe_id = ?", recipeID).
		Scan(&row).Error
	if err != nil {
		return RatingSummary{}, apperror.FromStorage(err, "rating")
	}
	return RatingSummary{Average: row.Average, Count: row.Total}, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Rating{}).Count(&count).Error; err != nil {
		return 0, apperror.FromStorage(err, "rating")
	}
	return count, nil
}
