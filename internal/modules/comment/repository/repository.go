package repository

import (
	"context"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uint) (*entity.Comment, error)
	FindAll(ctx context.Context) ([]*entity.Comment, error)
	FindByRecipeID(ctx context.Context, recipeID uint) ([]*entity.Comment, error)
	UpdateContent(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByRecipeID(ctx context.Context, recipeID uint) error
	DeleteByRecipeOwner(ctx context.Context, ownerID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
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

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
	return apperror.FromStorage(err, "comment")
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*entity.Comment, error) {
	var comment entity.Comment
	if err := withRelations(r.db.WithContext(ctx)).First(&comment, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "comment")
	}
	return &comment, nil
}

// FindAll returns every comment, newest first.
func (r *commentRepository) FindAll(ctx context.Context) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := withRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "comment")
	}
	return comments, nil
}

func (r *commentRepository) FindByRecipeID(ctx context.Context, recipeID uint) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	err := withRelations(r.db.WithContext(ctx)).
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "comment")
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *entity.Comment) error {
	err := r.db.WithContext(ctx).
		Model(comment).
		Select("content", "updated_at").
		Updates(comment).Error
	return apperror.FromStorage(err, "comment")
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Comment{}, id)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("comment not found")
	}
	return nil
}

func (r *commentRepository) DeleteByRecipeID(ctx context.Context, recipeID uint) error {
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&entity.Comment{}).Error
	return apperror.FromStorage(err, "comment")
}

// DeleteByRecipeOwner removes every comment left on recipes owned by ownerID.
func (r *commentRepository) DeleteByRecipeOwner(ctx context.Context, ownerID uint) error {
	owned := r.db.Model(&entity.Recipe{}).Select("id").Where("user_id = ?", ownerID)
	err := r.db.WithContext(ctx).Where("recipe_id IN (?)", owned).Delete(&entity.Comment{}).Error
	return apperror.FromStorage(err, "comment")
}

func (r *commentRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Comment{}).Error
	return apperror.FromStorage(err, "comment")
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Comment{}).Count(&count).Error; err != nil {
		return 0, apperror.FromStorage(err, "comment")
	}
	return count, nil
}
