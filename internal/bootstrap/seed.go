package bootstrap

import (
	"anoa.com/recipehub/internal/config"
	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var defaultCategories = []entity.Category{
	{Name: "Breakfast", Desc: "Morning meals"},
	{Name: "Main Course", Desc: "Lunch and dinner dishes"},
	{Name: "Dessert", Desc: "Sweets and baked goods"},
	{Name: "Beverage", Desc: "Drinks"},
}

// Migrate creates tables in dependency order so that foreign keys resolve.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Recipe{},
		&entity.Comment{},
		&entity.Rating{},
	)
}

func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := make([]entity.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	log.Info().Int("count", len(categories)).Msg("default categories seeded")
	return nil
}

// SeedAdminUser creates the configured admin account once. Nothing is seeded
// without ADMIN_PASSWORD.
func SeedAdminUser(db *gorm.DB, hasher credential.PasswordHasher, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", admin.Email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug().Str("email", admin.Email).Msg("admin user already exists, skipping seed")
		return nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username: "admin",
		Email:    admin.Email,
		Password: hash,
		Roles:    entity.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Info().Str("email", admin.Email).Msg("admin user seeded")
	return nil
}
