package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/recipehub/internal/bootstrap"
	"anoa.com/recipehub/internal/config"
	"anoa.com/recipehub/internal/credential"
	searchService "anoa.com/recipehub/internal/modules/search/service"
	"anoa.com/recipehub/internal/server"
	"anoa.com/recipehub/pkg/database"
	"anoa.com/recipehub/pkg/logger"
	"anoa.com/recipehub/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		logger.Init("development", "info")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(database.Options{
		DSN:          cfg.Database.DSN(),
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		LogQueries:   cfg.IsDevelopment() && cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := bootstrap.SeedCategories(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed categories")
	}
	if err := bootstrap.SeedAdminUser(db, credential.NewBcryptHasher(cfg.BcryptCost), cfg.Admin); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	deps := server.Dependencies{
		DB:     db,
		Redis:  connectRedis(cfg.Redis.URL),
		Search: connectSearch(cfg.Meili),
	}
	if deps.Redis != nil {
		defer deps.Redis.Close()
	}

	if cfg.Cloudinary.Enabled() {
		imageStorage, err := storage.NewCloudinaryStorage(
			cfg.Cloudinary.CloudName,
			cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret,
			cfg.Cloudinary.UploadFolder,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
		}
		deps.Storage = imageStorage
	} else {
		log.Warn().Msg("cloudinary not configured, image uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, deps)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Warn().Msg("REDIS_URL not set, write rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, write rate limiting disabled")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, write rate limiting disabled")
		_ = client.Close()
		return nil
	}

	log.Info().Msg("connected to redis")
	return client
}

func connectSearch(cfg config.MeiliConfig) searchService.RecipeIndexer {
	if cfg.Host == "" {
		log.Warn().Msg("MEILISEARCH_HOST not set, recipe search uses the database")
		return nil
	}

	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.MasterKey))
	if !client.IsHealthy() {
		log.Warn().Str("host", cfg.Host).Msg("meilisearch unhealthy, recipe search uses the database")
		return nil
	}

	return searchService.NewMeiliSearchService(client)
}
