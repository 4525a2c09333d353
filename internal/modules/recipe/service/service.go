package service

import (
	"context"

	"anoa.com/recipehub/internal/entity"
	categoryRepo "anoa.com/recipehub/internal/modules/category/repository"
	commentRepo "anoa.com/recipehub/internal/modules/comment/repository"
	ratingDto "anoa.com/recipehub/internal/modules/rating/dto"
	ratingRepo "anoa.com/recipehub/internal/modules/rating/repository"
	"anoa.com/recipehub/internal/modules/recipe/dto"
	"anoa.com/recipehub/internal/modules/recipe/repository"
	search "anoa.com/recipehub/internal/modules/search/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/database"
	commonDto "anoa.com/recipehub/pkg/dto"
	"anoa.com/recipehub/pkg/storage"
	"anoa.com/recipehub/pkg/validator"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	imageFolder        = "recipes"
	defaultSearchLimit = 20
)

type RecipeService interface {
	CreateRecipe(ctx context.Context, actor policy.Actor, req dto.CreateRecipeRequest, image *commonDto.ImageFile) (*dto.RecipeResponse, error)
	GetAllRecipes(ctx context.Context, query dto.RecipeQuery) (*dto.PaginatedRecipeResponse, error)
	GetRecipeByID(ctx context.Context, id uint) (*dto.RecipeResponse, error)
	GetRecipesByUserID(ctx context.Context, userID uint) ([]dto.RecipeResponse, error)
	SearchRecipes(ctx context.Context, q string, limit int) ([]dto.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, actor policy.Actor, id uint, req dto.UpdateRecipeRequest, image *commonDto.ImageFile) (*dto.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, actor policy.Actor, id uint) error
}

type recipeService struct {
	txm          database.TransactionManager
	recipes      repository.RecipeRepository
	comments     commentRepo.CommentRepository
	ratings      ratingRepo.RatingRepository
	categories   categoryRepo.CategoryRepository
	imageStorage storage.ImageStorage
	indexer      search.RecipeIndexer
	difficulties []string
}

// NewRecipeService accepts a nil imageStorage (uploads rejected) and a nil
// indexer (search falls back to the database).
func NewRecipeService(
	txm database.TransactionManager,
	recipes repository.RecipeRepository,
	comments commentRepo.CommentRepository,
	ratings ratingRepo.RatingRepository,
	categories categoryRepo.CategoryRepository,
	imageStorage storage.ImageStorage,
	indexer search.RecipeIndexer,
	difficulties []string,
) RecipeService {
	return &recipeService{
		txm:          txm,
		recipes:      recipes,
		comments:     comments,
		ratings:      ratings,
		categories:   categories,
		imageStorage: imageStorage,
		indexer:      indexer,
		difficulties: difficulties,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor policy.Actor, req dto.CreateRecipeRequest, image *commonDto.ImageFile) (*dto.RecipeResponse, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkDifficulty(req.DifficultyLevel); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	recipe := &entity.Recipe{
		UserID:          actor.ID,
		Title:           req.Title,
		Description:     req.Description,
		Ingredients:     req.Ingredients,
		Instructions:    req.Instructions,
		CookingTime:     req.CookingTime,
		ServingSize:     req.ServingSize,
		DifficultyLevel: req.DifficultyLevel,
		CategoryID:      req.CategoryID,
	}

	if image != nil {
		url, err := storage.Upload(ctx, s.imageStorage, image.Reader, imageFolder, image.FileName)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = &url
	}

	if err := s.recipes.Create(ctx, recipe); err != nil {
		storage.DeleteQuietly(ctx, s.imageStorage, recipe.ImageURL)
		return nil, err
	}

	created, err := s.recipes.FindByID(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)

	res := dto.NewRecipeResponse(created)
	return &res, nil
}

func (s *recipeService) GetAllRecipes(ctx context.Context, query dto.RecipeQuery) (*dto.PaginatedRecipeResponse, error) {
	page, limit := query.Normalize()

	recipes, total, err := s.recipes.FindAll(ctx, repository.RecipeFilter{
		CategoryID: query.CategoryID,
		Difficulty: query.Difficulty,
		Search:     query.Search,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedRecipeResponse{
		Data: toResponses(recipes),
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id uint) (*dto.RecipeResponse, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := s.ratings.SummaryForRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	res := dto.NewRecipeResponse(recipe)
	avg := ratingDto.NewAverage(summary.Average)
	res.AverageRating = &avg
	return &res, nil
}

func (s *recipeService) GetRecipesByUserID(ctx context.Context, userID uint) ([]dto.RecipeResponse, error) {
	recipes, err := s.recipes.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(recipes), nil
}

func (s *recipeService) SearchRecipes(ctx context.Context, q string, limit int) ([]dto.RecipeResponse, error) {
	if limit < 1 || limit > 100 {
		limit = defaultSearchLimit
	}

	if s.indexer != nil {
		ids, err := s.indexer.SearchRecipes(ctx, q, limit)
		if err == nil {
			recipes, _, err := s.recipes.FindAll(ctx, repository.RecipeFilter{IDs: ids})
			if err != nil {
				return nil, err
			}
			return toResponses(orderByIDs(recipes, ids)), nil
		}
		log.Ctx(ctx).Warn().Err(err).Msg("search index unavailable, falling back to database search")
	}

	recipes, _, err := s.recipes.FindAll(ctx, repository.RecipeFilter{Search: q, Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return toResponses(recipes), nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor policy.Actor, id uint, req dto.UpdateRecipeRequest, image *commonDto.ImageFile) (*dto.RecipeResponse, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(recipe.UserID, actor); err != nil {
		return nil, err
	}

	if req.Empty() && image == nil {
		return nil, apperror.Validation("at least one field must be provided")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.DifficultyLevel != nil {
		if err := s.checkDifficulty(*req.DifficultyLevel); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil && *req.CategoryID != recipe.CategoryID {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	applyUpdate(recipe, req)

	oldImage := recipe.ImageURL
	if image != nil {
		url, err := storage.Upload(ctx, s.imageStorage, image.Reader, imageFolder, image.FileName)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = &url
	}

	if err := s.recipes.Update(ctx, recipe); err != nil {
		if image != nil {
			storage.DeleteQuietly(ctx, s.imageStorage, recipe.ImageURL)
		}
		return nil, err
	}

	if image != nil {
		storage.DeleteQuietly(ctx, s.imageStorage, oldImage)
	}

	updated, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)

	res := dto.NewRecipeResponse(updated)
	return &res, nil
}

// DeleteRecipe removes the recipe with its comments and ratings in one transaction.
func (s *recipeService) DeleteRecipe(ctx context.Context, actor policy.Actor, id uint) error {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireOwnerOrAdmin(recipe.UserID, actor); err != nil {
		return err
	}

	err = s.txm.Execute(ctx, func(tx *gorm.DB) error {
		if err := s.comments.WithTx(tx).DeleteByRecipeID(ctx, id); err != nil {
			return err
		}
		if err := s.ratings.WithTx(tx).DeleteByRecipeID(ctx, id); err != nil {
			return err
		}
		return s.recipes.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return apperror.Ensure(err)
	}

	storage.DeleteQuietly(ctx, s.imageStorage, recipe.ImageURL)
	s.unindex(ctx, id)

	log.Ctx(ctx).Info().Uint("recipe_id", id).Uint("actor_id", actor.ID).Msg("recipe deleted")
	return nil
}

func (s *recipeService) checkDifficulty(level string) error {
	for _, allowed := range s.difficulties {
		if level == allowed {
			return nil
		}
	}
	return apperror.Validation("difficulty_level must be one of " + joinLevels(s.difficulties))
}

func (s *recipeService) checkCategory(ctx context.Context, id uint) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.Validation("invalid category id")
	}
	return nil
}

func (s *recipeService) index(ctx context.Context, recipe *entity.Recipe) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexRecipe(ctx, recipe); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("recipe_id", recipe.ID).Msg("failed to index recipe")
	}
}

func (s *recipeService) unindex(ctx context.Context, id uint) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.DeleteRecipe(ctx, id); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("recipe_id", id).Msg("failed to remove recipe from index")
	}
}
