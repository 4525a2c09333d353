package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/recipehub/internal/config"
	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/middleware"
	"anoa.com/recipehub/pkg/database"
	"anoa.com/recipehub/pkg/ratelimiter"
	"anoa.com/recipehub/pkg/storage"

	adminHttp "anoa.com/recipehub/internal/modules/admin/delivery/http"
	adminService "anoa.com/recipehub/internal/modules/admin/service"

	categoryHttp "anoa.com/recipehub/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/recipehub/internal/modules/category/repository"
	categoryService "anoa.com/recipehub/internal/modules/category/service"

	commentHttp "anoa.com/recipehub/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/recipehub/internal/modules/comment/repository"
	commentService "anoa.com/recipehub/internal/modules/comment/service"

	ratingHttp "anoa.com/recipehub/internal/modules/rating/delivery/http"
	ratingRepo "anoa.com/recipehub/internal/modules/rating/repository"
	ratingService "anoa.com/recipehub/internal/modules/rating/service"

	recipeHttp "anoa.com/recipehub/internal/modules/recipe/delivery/http"
	recipeRepo "anoa.com/recipehub/internal/modules/recipe/repository"
	recipeService "anoa.com/recipehub/internal/modules/recipe/service"

	searchService "anoa.com/recipehub/internal/modules/search/service"

	userHttp "anoa.com/recipehub/internal/modules/user/delivery/http"
	userRepo "anoa.com/recipehub/internal/modules/user/repository"
	userService "anoa.com/recipehub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Dependencies are the external clients the server is built on. Redis, Storage
// and Search are optional.
type Dependencies struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.ImageStorage
	Search  searchService.RecipeIndexer
}

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	db := deps.DB
	txm := database.NewTransactionManager(db)

	hasher := credential.NewBcryptHasher(cfg.BcryptCost)
	tokens := credential.NewJWTService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	limiter := ratelimiter.New(deps.Redis, cfg.RateLimitWrite)

	userRepo := userRepo.NewUserRepository(db)
	categoryRepo := categoryRepo.NewCategoryRepository(db)
	recipeRepo := recipeRepo.NewRecipeRepository(db)
	commentRepo := commentRepo.NewCommentRepository(db)
	ratingRepo := ratingRepo.NewRatingRepository(db)

	authSvc := userService.NewAuthService(userRepo, hasher, tokens)
	userSvc := userService.NewUserService(userRepo, deps.Storage)
	userHandler := userHttp.NewUserHandler(authSvc, userSvc)

	categorySvc := categoryService.NewCategoryService(categoryRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	recipeSvc := recipeService.NewRecipeService(txm, recipeRepo, commentRepo, ratingRepo, categoryRepo, deps.Storage, deps.Search, cfg.Recipe.DifficultyLevels)
	recipeHandler := recipeHttp.NewRecipeHandler(recipeSvc)

	commentSvc := commentService.NewCommentService(commentRepo, recipeRepo, limiter)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	ratingSvc := ratingService.NewRatingService(txm, ratingRepo, recipeRepo, limiter)
	ratingHandler := ratingHttp.NewRatingHandler(ratingSvc)

	adminSvc := adminService.NewAdminService(txm, adminService.Repositories{
		Users:    userRepo,
		Recipes:  recipeRepo,
		Comments: commentRepo,
		Ratings:  ratingRepo,
	}, hasher, recipeSvc, commentSvc, deps.Storage, deps.Search)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(userRepo, tokens)

	api := router.Group("/api")

	// Public routes
	users := api.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/refresh-token", userHandler.RefreshToken)
	}
	api.GET("/categories/:id", categoryHandler.GetCategoryByID)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/users/logout", userHandler.Logout)
		protected.GET("/users/verify-token", userHandler.VerifyToken)
		protected.GET("/users", userHandler.ListUsers)
		protected.GET("/users/profile", userHandler.GetProfile)
		protected.PUT("/users/profile", userHandler.UpdateProfile)
		protected.POST("/users/profile-picture", userHandler.UploadProfilePicture)

		protected.GET("/categories", categoryHandler.GetAllCategories)

		protected.GET("/recipes", recipeHandler.GetAllRecipes)
		protected.GET("/recipes/search", recipeHandler.SearchRecipes)
		protected.GET("/recipes/user/:id", recipeHandler.GetRecipesByUserID)
		protected.GET("/recipes/:id", recipeHandler.GetRecipeByID)
		protected.POST("/recipes", recipeHandler.CreateRecipe)
		protected.PUT("/recipes/:id", recipeHandler.UpdateRecipe)
		protected.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)

		protected.GET("/comments", commentHandler.GetAllComments)
		protected.GET("/comments/recipes/:recipe_id", commentHandler.GetCommentsByRecipeID)
		protected.POST("/comments", commentHandler.CreateComment)
		protected.PUT("/comments/:id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)

		protected.GET("/ratings", ratingHandler.GetAllRatings)
		protected.GET("/ratings/recipes/:recipe_id", ratingHandler.GetRatingsByRecipe)
		protected.GET("/ratings/user/:recipe_id", ratingHandler.GetMyRating)
		protected.POST("/ratings", ratingHandler.SubmitRating)
		protected.PUT("/ratings/recipe_id/:recipe_id", ratingHandler.UpdateMyRating)
		protected.DELETE("/ratings/:id", ratingHandler.DeleteRating)

		adminOnly := protected.Group("")
		adminOnly.Use(authMiddleware.RequireAdmin())
		{
			adminOnly.POST("/categories", categoryHandler.CreateCategory)
			adminOnly.PUT("/categories/:id", categoryHandler.UpdateCategory)
			adminOnly.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/dashboard", adminHandler.Dashboard)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.GET("/comments", adminHandler.GetAllComments)
			adminGroup.DELETE("/comments/:id", adminHandler.DeleteComment)
			adminGroup.GET("/recipes", adminHandler.GetAllRecipes)
			adminGroup.DELETE("/recipes/:id", adminHandler.DeleteRecipe)
		}
	}

	return &Server{
		engine: router,
		cfg:    cfg,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
