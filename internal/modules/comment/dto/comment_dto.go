package dto

import (
	"time"

	"anoa.com/recipehub/internal/entity"
)

const (
	MinContentLength = 3
	MaxContentLength = 500
)

type CreateCommentRequest struct {
	RecipeID uint   `json:"recipe_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID        uint               `json:"id"`
	RecipeID  uint               `json:"recipe_id"`
	UserID    uint               `json:"user_id"`
	Content   string             `json:"content"`
	User      *entity.AuthorView `json:"user,omitempty"`
	Recipe    *entity.RecipeRef  `json:"recipe,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewCommentResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		RecipeID:  c.RecipeID,
		UserID:    c.UserID,
		Content:   c.Content,
		User:      c.User.Author(),
		Recipe:    c.Recipe.Ref(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCommentResponses(comments []*entity.Comment) []CommentResponse {
	res := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		res = append(res, NewCommentResponse(c))
	}
	return res
}
