package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/comment/dto"
	"anoa.com/recipehub/internal/modules/comment/repository"
	recipeRepo "anoa.com/recipehub/internal/modules/recipe/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/ratelimiter"
	"github.com/rs/zerolog/log"
)

const rateLimitAction = "comment"

type CommentService interface {
	CreateComment(ctx context.Context, actor policy.Actor, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetAllComments(ctx context.Context) ([]dto.CommentResponse, error)
	GetCommentsByRecipeID(ctx context.Context, recipeID uint) ([]dto.CommentResponse, error)
	UpdateComment(ctx context.Context, actor policy.Actor, id uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor policy.Actor, id uint) (*dto.CommentResponse, error)
}

type commentService struct {
	comments repository.CommentRepository
	recipes  recipeRepo.RecipeRepository
	limiter  *ratelimiter.Limiter
}

func NewCommentService(comments repository.CommentRepository, recipes recipeRepo.RecipeRepository, limiter *ratelimiter.Limiter) CommentService {
	return &commentService{comments: comments, recipes: recipes, limiter: limiter}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n < dto.MinContentLength || n > dto.MaxContentLength {
		return "", apperror.Validation(fmt.Sprintf("content must be between %d and %d characters", dto.MinContentLength, dto.MaxContentLength))
	}
	return content, nil
}

func (s *commentService) CreateComment(ctx context.Context, actor policy.Actor, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	if _, err := s.recipes.FindByID(ctx, req.RecipeID); err != nil {
		return nil, err
	}

	if err := s.limiter.Check(ctx, actor.ID, rateLimitAction); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		RecipeID: req.RecipeID,
		UserID:   actor.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if clearErr := s.limiter.Clear(ctx, actor.ID, rateLimitAction); clearErr != nil {
			log.Ctx(ctx).Warn().Err(clearErr).Uint("user_id", actor.ID).Msg("failed to release comment cooldown")
		}
		return nil, err
	}

	return s.load(ctx, comment.ID)
}

func (s *commentService) GetAllComments(ctx context.Context) ([]dto.CommentResponse, error) {
	comments, err := s.comments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponses(comments), nil
}

// GetCommentsByRecipeID returns an empty list when the recipe has no comments.
func (s *commentService) GetCommentsByRecipeID(ctx context.Context, recipeID uint) ([]dto.CommentResponse, error) {
	comments, err := s.comments.FindByRecipeID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponses(comments), nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor policy.Actor, id uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(comment.UserID, actor); err != nil {
		return nil, err
	}

	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}

	res := dto.NewCommentResponse(comment)
	return &res, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor policy.Actor, id uint) (*dto.CommentResponse, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(comment.UserID, actor); err != nil {
		return nil, err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return nil, err
	}

	res := dto.NewCommentResponse(comment)
	return &res, nil
}

func (s *commentService) load(ctx context.Context, id uint) (*dto.CommentResponse, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewCommentResponse(comment)
	return &res, nil
}
