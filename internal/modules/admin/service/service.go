package service

import (
	"context"
	"strings"

	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/admin/dto"
	commentDto "anoa.com/recipehub/internal/modules/comment/dto"
	commentRepo "anoa.com/recipehub/internal/modules/comment/repository"
	commentService "anoa.com/recipehub/internal/modules/comment/service"
	ratingRepo "anoa.com/recipehub/internal/modules/rating/repository"
	recipeDto "anoa.com/recipehub/internal/modules/recipe/dto"
	recipeRepo "anoa.com/recipehub/internal/modules/recipe/repository"
	recipeService "anoa.com/recipehub/internal/modules/recipe/service"
	search "anoa.com/recipehub/internal/modules/search/service"
	userDto "anoa.com/recipehub/internal/modules/user/dto"
	userRepo "anoa.com/recipehub/internal/modules/user/repository"
	userService "anoa.com/recipehub/internal/modules/user/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/database"
	"anoa.com/recipehub/pkg/storage"
	"anoa.com/recipehub/pkg/validator"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	GetAllUsers(ctx context.Context) ([]entity.UserView, error)
	CreateUser(ctx context.Context, req userDto.CreateUserRequest) (*entity.UserView, error)
	DeleteUser(ctx context.Context, actor policy.Actor, id uint) error
	GetAllComments(ctx context.Context) ([]commentDto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor policy.Actor, id uint) (*commentDto.CommentResponse, error)
	GetAllRecipes(ctx context.Context) ([]recipeDto.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, actor policy.Actor, id uint) error
}

type Repositories struct {
	Users    userRepo.UserRepository
	Recipes  recipeRepo.RecipeRepository
	Comments commentRepo.CommentRepository
	Ratings  ratingRepo.RatingRepository
}

type adminService struct {
	txm          database.TransactionManager
	repos        Repositories
	hasher       credential.PasswordHasher
	recipes      recipeService.RecipeService
	comments     commentService.CommentService
	imageStorage storage.ImageStorage
	indexer      search.RecipeIndexer
}

func NewAdminService(
	txm database.TransactionManager,
	repos Repositories,
	hasher credential.PasswordHasher,
	recipes recipeService.RecipeService,
	comments commentService.CommentService,
	imageStorage storage.ImageStorage,
	indexer search.RecipeIndexer,
) AdminService {
	return &adminService{
		txm:          txm,
		repos:        repos,
		hasher:       hasher,
		recipes:      recipes,
		comments:     comments,
		imageStorage: imageStorage,
		indexer:      indexer,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		res dto.DashboardResponse
		err error
	)

	if res.TotalUsers, err = s.repos.Users.Count(ctx); err != nil {
		return nil, err
	}
	if res.TotalRecipes, err = s.repos.Recipes.Count(ctx); err != nil {
		return nil, err
	}
	if res.TotalComments, err = s.repos.Comments.Count(ctx); err != nil {
		return nil, err
	}
	if res.TotalRatings, err = s.repos.Ratings.Count(ctx); err != nil {
		return nil, err
	}

	return &res, nil
}

// GetAllUsers includes admin accounts.
func (s *adminService) GetAllUsers(ctx context.Context) ([]entity.UserView, error) {
	users, err := s.repos.Users.FindAll(ctx, userRepo.UserFilter{IncludeAdmins: true})
	if err != nil {
		return nil, err
	}
	return userDto.NewUserViews(users), nil
}

func (s *adminService) CreateUser(ctx context.Context, req userDto.CreateUserRequest) (*entity.UserView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Roles == "" {
		req.Roles = entity.RoleUser
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := userService.CreateAccount(ctx, s.repos.Users, s.hasher, req.Username, req.Email, req.Password, req.Roles)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Uint("user_id", user.ID).Str("role", string(user.Roles)).Msg("user created by admin")

	view := user.View()
	return &view, nil
}

// DeleteUser removes the user together with their recipes, the comments and
// ratings left on those recipes, and the comments and ratings the user wrote.
func (s *adminService) DeleteUser(ctx context.Context, actor policy.Actor, id uint) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	recipes, err := s.repos.Recipes.FindByUserID(ctx, id)
	if err != nil {
		return err
	}

	err = s.txm.Execute(ctx, func(tx *gorm.DB) error {
		comments := s.repos.Comments.WithTx(tx)
		ratings := s.repos.Ratings.WithTx(tx)

		if err := comments.DeleteByRecipeOwner(ctx, id); err != nil {
			return err
		}
		if err := ratings.DeleteByRecipeOwner(ctx, id); err != nil {
			return err
		}
		if err := comments.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := ratings.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := s.repos.Recipes.WithTx(tx).DeleteByUserID(ctx, id); err != nil {
			return err
		}
		return s.repos.Users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return apperror.Ensure(err)
	}

	for _, recipe := range recipes {
		storage.DeleteQuietly(ctx, s.imageStorage, recipe.ImageURL)
		if s.indexer != nil {
			if err := s.indexer.DeleteRecipe(ctx, recipe.ID); err != nil {
				log.Ctx(ctx).Warn().Err(err).Uint("recipe_id", recipe.ID).Msg("failed to remove recipe from search index")
			}
		}
	}
	storage.DeleteQuietly(ctx, s.imageStorage, user.ProfilePicture)

	log.Ctx(ctx).Info().
		Uint("user_id", id).
		Uint("deleted_by", actor.ID).
		Int("recipes", len(recipes)).
		Msg("user deleted")

	return nil
}

func (s *adminService) GetAllComments(ctx context.Context) ([]commentDto.CommentResponse, error) {
	return s.comments.GetAllComments(ctx)
}

func (s *adminService) DeleteComment(ctx context.Context, actor policy.Actor, id uint) (*commentDto.CommentResponse, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.comments.DeleteComment(ctx, actor, id)
}

// GetAllRecipes lists every recipe, newest first, without pagination.
func (s *adminService) GetAllRecipes(ctx context.Context) ([]recipeDto.RecipeResponse, error) {
	recipes, _, err := s.repos.Recipes.FindAll(ctx, recipeRepo.RecipeFilter{})
	if err != nil {
		return nil, err
	}

	res := make([]recipeDto.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		res = append(res, recipeDto.NewRecipeResponse(r))
	}
	return res, nil
}

func (s *adminService) DeleteRecipe(ctx context.Context, actor policy.Actor, id uint) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	return s.recipes.DeleteRecipe(ctx, actor, id)
}
