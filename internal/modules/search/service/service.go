package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/recipehub/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

const recipesIndex = "recipes"

// RecipeIndexer keeps the full-text recipe index in sync with the database.
type RecipeIndexer interface {
	IndexRecipe(ctx context.Context, recipe *entity.Recipe) error
	DeleteRecipe(ctx context.Context, id uint) error
	SearchRecipes(ctx context.Context, query string, limit int) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) RecipeIndexer {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	filterable := []interface{}{"category_id", "user_id", "difficulty_level"}
	if _, err := s.client.Index(recipesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn().Err(err).Msg("failed to update recipes filterable attributes")
	}

	sortable := []string{"created_at", "cooking_time"}
	if _, err := s.client.Index(recipesIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Warn().Err(err).Msg("failed to update recipes sortable attributes")
	}

	searchable := []string{"title", "ingredients", "description", "category"}
	if _, err := s.client.Index(recipesIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn().Err(err).Msg("failed to update recipes searchable attributes")
	}

	log.Info().Str("index", recipesIndex).Msg("meilisearch index initialized")
}

type recipeDocument struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Ingredients     string `json:"ingredients"`
	DifficultyLevel string `json:"difficulty_level"`
	CookingTime     int    `json:"cooking_time"`
	CategoryID      uint   `json:"category_id"`
	Category        string `json:"category"`
	UserID          uint   `json:"user_id"`
	Username        string `json:"username"`
	CreatedAt       int64  `json:"created_at"`
}

func (s *meiliSearchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) toDocument(recipe *entity.Recipe) recipeDocument {
	return recipeDocument{
		ID:              recipe.ID,
		Title:           s.cleanContentForIndex(recipe.Title),
		Description:     s.cleanContentForIndex(recipe.Description),
		Ingredients:     s.cleanContentForIndex(recipe.Ingredients),
		DifficultyLevel: recipe.DifficultyLevel,
		CookingTime:     recipe.CookingTime,
		CategoryID:      recipe.CategoryID,
		Category:        recipe.Category.Name,
		UserID:          recipe.UserID,
		Username:        recipe.User.Username,
		CreatedAt:       recipe.CreatedAt.Unix(),
	}
}

func (s *meiliSearchService) IndexRecipe(ctx context.Context, recipe *entity.Recipe) error {
	doc := s.toDocument(recipe)

	primaryKey := "id"
	task, err := s.client.Index(recipesIndex).AddDocuments([]recipeDocument{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to index recipe %d: %w", recipe.ID, err)
	}

	log.Ctx(ctx).Debug().Uint("recipe_id", recipe.ID).Int64("task_uid", task.TaskUID).Msg("recipe indexed")
	return nil
}

func (s *meiliSearchService) DeleteRecipe(ctx context.Context, id uint) error {
	if _, err := s.client.Index(recipesIndex).DeleteDocument(fmt.Sprint(id)); err != nil {
		return fmt.Errorf("failed to remove recipe %d from index: %w", id, err)
	}
	return nil
}

type searchHits struct {
	Hits []struct {
		ID uint `json:"id"`
	} `json:"hits"`
}

// SearchRecipes returns matching recipe ids ordered by relevance.
func (s *meiliSearchService) SearchRecipes(ctx context.Context, query string, limit int) ([]uint, error) {
	raw, err := s.client.Index(recipesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}

	var res searchHits
	if raw != nil {
		if err := json.Unmarshal(*raw, &res); err != nil {
			return nil, fmt.Errorf("failed to decode meilisearch response: %w", err)
		}
	}

	ids := make([]uint, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
