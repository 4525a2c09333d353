// Package testutil provides a migrated sqlite database and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"anoa.com/recipehub/internal/bootstrap"
	"anoa.com/recipehub/internal/entity"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh sqlite database with foreign keys enforced.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role entity.Role) *entity.User {
	t.Helper()

	user := &entity.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Roles:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *entity.Category {
	t.Helper()

	category := &entity.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func CreateRecipe(t *testing.T, db *gorm.DB, owner *entity.User, category *entity.Category) *entity.Recipe {
	t.Helper()

	recipe := &entity.Recipe{
		UserID:          owner.ID,
		Title:           "Recipe by " + owner.Username,
		Description:     "A simple test recipe description",
		Ingredients:     "flour, water, salt",
		Instructions:    "mix everything and bake",
		CookingTime:     30,
		ServingSize:     2,
		DifficultyLevel: "Easy",
		CategoryID:      category.ID,
	}
	require.NoError(t, db.Omit("User", "Category").Create(recipe).Error)
	return recipe
}

func CreateComment(t *testing.T, db *gorm.DB, author *entity.User, recipe *entity.Recipe, content string) *entity.Comment {
	t.Helper()

	comment := &entity.Comment{RecipeID: recipe.ID, UserID: author.ID, Content: content}
	require.NoError(t, db.Omit("User", "Recipe").Create(comment).Error)
	return comment
}

func CreateRating(t *testing.T, db *gorm.DB, rater *entity.User, recipe *entity.Recipe, value int) *entity.Rating {
	t.Helper()

	rating := &entity.Rating{RecipeID: recipe.ID, UserID: rater.ID, Value: value}
	require.NoError(t, db.Omit("User", "Recipe").Create(rating).Error)
	return rating
}

func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// FakeStorage is an in-memory image store that records uploads and deletions.
type FakeStorage struct {
	mu       sync.Mutex
	seq      int
	Uploaded []string
	Deleted  []string
	// UploadErr, when set, is returned by every upload.
	UploadErr error
}

func (s *FakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}

	s.seq++
	url := fmt.Sprintf("https://images.test/%s/%d-%s", folder, s.seq, fileName)
	s.Uploaded = append(s.Uploaded, url)
	return url, nil
}

func (s *FakeStorage) DeleteImage(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Deleted = append(s.Deleted, url)
	return nil
}

// PNG is a minimal payload that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
