package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/rating/dto"
	"anoa.com/recipehub/internal/modules/rating/repository"
	recipeRepo "anoa.com/recipehub/internal/modules/recipe/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/database"
	"anoa.com/recipehub/pkg/ratelimiter"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const rateLimitAction = "rating"

type RatingService interface {
	SubmitRating(ctx context.Context, actor policy.Actor, req dto.SubmitRatingRequest) (*dto.SubmitRatingResult, error)
	AverageRating(ctx context.Context, recipeID uint) (dto.Average, error)
	GetRatingsByRecipe(ctx context.Context, recipeID uint) (*dto.RecipeRatings, error)
	GetMyRating(ctx context.Context, actor policy.Actor, recipeID uint) (*dto.MyRatingResponse, error)
	UpdateMyRating(ctx context.Context, actor policy.Actor, recipeID uint, req dto.UpdateRatingRequest) (*dto.RatingResponse, error)
	DeleteRating(ctx context.Context, actor policy.Actor, id uint) (*dto.RatingResponse, error)
	GetAllRatings(ctx context.Context) ([]dto.RatingResponse, error)
}

type ratingService struct {
	txm     database.TransactionManager
	ratings repository.RatingRepository
	recipes recipeRepo.RecipeRepository
	limiter *ratelimiter.Limiter
}

func NewRatingService(
	txm database.TransactionManager,
	ratings repository.RatingRepository,
	recipes recipeRepo.RecipeRepository,
	limiter *ratelimiter.Limiter,
) RatingService {
	return &ratingService{txm: txm, ratings: ratings, recipes: recipes, limiter: limiter}
}

func checkValue(value int) error {
	if value < entity.MinRatingValue || value > entity.MaxRatingValue {
		return apperror.Validation(fmt.Sprintf("rating value must be between %d and %d", entity.MinRatingValue, entity.MaxRatingValue))
	}
	return nil
}

// SubmitRating inserts the actor's rating or replaces the value of the existing one.
// A concurrent insert that loses the unique index race is retried as an update.
func (s *ratingService) SubmitRating(ctx context.Context, actor policy.Actor, req dto.SubmitRatingRequest) (*dto.SubmitRatingResult, error) {
	if err := checkValue(req.Value); err != nil {
		return nil, err
	}

	recipe, err := s.recipes.FindByID(ctx, req.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID == actor.ID {
		return nil, apperror.Forbidden("you cannot rate your own recipe")
	}

	// Only a first rating starts the cooldown. Changing an existing value does not.
	limited := false
	if _, err := s.ratings.FindByRecipeAndUser(ctx, req.RecipeID, actor.ID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		if err := s.limiter.Check(ctx, actor.ID, rateLimitAction); err != nil {
			return nil, err
		}
		limited = true
	}

	rating, updated, err := s.upsert(ctx, req.RecipeID, actor.ID, req.Value)
	if errors.Is(err, apperror.ErrConflict) {
		log.Ctx(ctx).Debug().Uint("recipe_id", req.RecipeID).Uint("user_id", actor.ID).Msg("rating insert raced, retrying as update")
		rating, updated, err = s.upsert(ctx, req.RecipeID, actor.ID, req.Value)
	}
	if err != nil {
		if limited {
			s.releaseCooldown(ctx, actor.ID)
		}
		return nil, err
	}

	return &dto.SubmitRatingResult{Rating: dto.NewRatingResponse(rating), Updated: updated}, nil
}

func (s *ratingService) releaseCooldown(ctx context.Context, userID uint) {
	if err := s.limiter.Clear(ctx, userID, rateLimitAction); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("user_id", userID).Msg("failed to release rating cooldown")
	}
}

func (s *ratingService) upsert(ctx context.Context, recipeID, userID uint, value int) (*entity.Rating, bool, error) {
	var (
		rating  *entity.Rating
		updated bool
	)

	err := s.txm.Execute(ctx, func(tx *gorm.DB) error {
		repo := s.ratings.WithTx(tx)

		existing, err := repo.FindByRecipeAndUser(ctx, recipeID, userID)
		switch {
		case err == nil:
			existing.Value = value
			if err := repo.UpdateValue(ctx, existing); err != nil {
				return err
			}
			rating, updated = existing, true
			return nil
		case !errors.Is(err, apperror.ErrNotFound):
			return err
		}

		created := &entity.Rating{RecipeID: recipeID, UserID: userID, Value: value}
		if err := repo.Create(ctx, created); err != nil {
			return err
		}
		rating, updated = created, false
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return rating, updated, nil
}

func (s *ratingService) AverageRating(ctx context.Context, recipeID uint) (dto.Average, error) {
	summary, err := s.ratings.SummaryForRecipe(ctx, recipeID)
	if err != nil {
		return 0, err
	}
	return dto.NewAverage(summary.Average), nil
}

func (s *ratingService) GetRatingsByRecipe(ctx context.Context, recipeID uint) (*dto.RecipeRatings, error) {
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return nil, err
	}

	ratings, err := s.ratings.FindByRecipeID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	summary, err := s.ratings.SummaryForRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	return &dto.RecipeRatings{
		Ratings:       toResponses(ratings),
		AverageRating: dto.NewAverage(summary.Average),
		Count:         summary.Count,
	}, nil
}

// GetMyRating reports a nil rating when the actor has not rated the recipe.
func (s *ratingService) GetMyRating(ctx context.Context, actor policy.Actor, recipeID uint) (*dto.MyRatingResponse, error) {
	rating, err := s.ratings.FindByRecipeAndUser(ctx, recipeID, actor.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return &dto.MyRatingResponse{RecipeID: recipeID}, nil
	}
	if err != nil {
		return nil, err
	}

	res := dto.NewRatingResponse(rating)
	return &dto.MyRatingResponse{RecipeID: recipeID, Rating: &res}, nil
}

func (s *ratingService) UpdateMyRating(ctx context.Context, actor policy.Actor, recipeID uint, req dto.UpdateRatingRequest) (*dto.RatingResponse, error) {
	if err := checkValue(req.Value); err != nil {
		return nil, err
	}

	rating, err := s.ratings.FindByRecipeAndUser(ctx, recipeID, actor.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound("you have not rated this recipe yet")
	}
	if err != nil {
		return nil, err
	}

	rating.Value = req.Value
	if err := s.ratings.UpdateValue(ctx, rating); err != nil {
		return nil, err
	}

	res := dto.NewRatingResponse(rating)
	return &res, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, actor policy.Actor, id uint) (*dto.RatingResponse, error) {
	rating, err := s.ratings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(rating.UserID, actor); err != nil {
		return nil, err
	}

	if err := s.ratings.Delete(ctx, id); err != nil {
		return nil, err
	}

	res := dto.NewRatingResponse(rating)
	return &res, nil
}

func (s *ratingService) GetAllRatings(ctx context.Context) ([]dto.RatingResponse, error) {
	ratings, err := s.ratings.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(ratings), nil
}

func toResponses(ratings []*entity.Rating) []dto.RatingResponse {
	res := make([]dto.RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		res = append(res, dto.NewRatingResponse(r))
	}
	return res
}
