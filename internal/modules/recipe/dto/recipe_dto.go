package dto

import (
	"time"

	"anoa.com/recipehub/internal/entity"
	ratingDto "anoa.com/recipehub/internal/modules/rating/dto"
	commonDto "anoa.com/recipehub/pkg/dto"
)

type CreateRecipeRequest struct {
	Title           string `json:"title" form:"title" binding:"required,min=3,max=100"`
	Description     string `json:"description" form:"description" binding:"required,min=10,max=500"`
	Ingredients     string `json:"ingredients" form:"ingredients" binding:"required,min=10"`
	Instructions    string `json:"instructions" form:"instructions" binding:"required,min=10"`
	CookingTime     int    `json:"cooking_time" form:"cooking_time" binding:"required,gte=1"`
	ServingSize     int    `json:"serving_size" form:"serving_size" binding:"required,gte=1"`
	DifficultyLevel string `json:"difficulty_level" form:"difficulty_level" binding:"required"`
	CategoryID      uint   `json:"category_id" form:"category_id" binding:"required"`
}

// UpdateRecipeRequest is a partial update. Nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title           *string `json:"title" form:"title" binding:"omitempty,min=3,max=100"`
	Description     *string `json:"description" form:"description" binding:"omitempty,min=10,max=500"`
	Ingredients     *string `json:"ingredients" form:"ingredients" binding:"omitempty,min=10"`
	Instructions    *string `json:"instructions" form:"instructions" binding:"omitempty,min=10"`
	CookingTime     *int    `json:"cooking_time" form:"cooking_time" binding:"omitempty,gte=1"`
	ServingSize     *int    `json:"serving_size" form:"serving_size" binding:"omitempty,gte=1"`
	DifficultyLevel *string `json:"difficulty_level" form:"difficulty_level"`
	CategoryID      *uint   `json:"category_id" form:"category_id" binding:"omitempty,gte=1"`
}

func (r UpdateRecipeRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Ingredients == nil && r.Instructions == nil &&
		r.CookingTime == nil && r.ServingSize == nil && r.DifficultyLevel == nil && r.CategoryID == nil
}

type RecipeQuery struct {
	CategoryID uint   `form:"category_id"`
	Difficulty string `form:"difficulty_level"`
	Search     string `form:"search"`
	commonDto.PaginationQuery
}

type RecipeResponse struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Ingredients     string              `json:"ingredients"`
	Instructions    string              `json:"instructions"`
	CookingTime     int                 `json:"cooking_time"`
	ServingSize     int                 `json:"serving_size"`
	DifficultyLevel string              `json:"difficulty_level"`
	CategoryID      uint                `json:"category_id"`
	ImageURL        *string             `json:"image_url"`
	User            *entity.AuthorView  `json:"user,omitempty"`
	Category        *entity.CategoryRef `json:"category,omitempty"`
	AverageRating   *ratingDto.Average  `json:"average_rating,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewRecipeResponse(r *entity.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Title:           r.Title,
		Description:     r.Description,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		CookingTime:     r.CookingTime,
		ServingSize:     r.ServingSize,
		DifficultyLevel: r.DifficultyLevel,
		CategoryID:      r.CategoryID,
		ImageURL:        r.ImageURL,
		User:            r.User.Author(),
		Category:        r.Category.Ref(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type PaginatedRecipeResponse struct {
	Data []RecipeResponse         `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
