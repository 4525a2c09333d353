package service

import (
	"strings"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/recipe/dto"
)

func applyUpdate(recipe *entity.Recipe, req dto.UpdateRecipeRequest) {
	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Instructions != nil {
		recipe.Instructions = *req.Instructions
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}
	if req.ServingSize != nil {
		recipe.ServingSize = *req.ServingSize
	}
	if req.DifficultyLevel != nil {
		recipe.DifficultyLevel = *req.DifficultyLevel
	}
	if req.CategoryID != nil {
		recipe.CategoryID = *req.CategoryID
	}
}

func toResponses(recipes []*entity.Recipe) []dto.RecipeResponse {
	res := make([]dto.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		res = append(res, dto.NewRecipeResponse(r))
	}
	return res
}

// orderByIDs sorts recipes to follow ids, dropping ids with no recipe.
func orderByIDs(recipes []*entity.Recipe, ids []uint) []*entity.Recipe {
	byID := make(map[uint]*entity.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	ordered := make([]*entity.Recipe, 0, len(recipes))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

func joinLevels(levels []string) string {
	return "[" + strings.Join(levels, ", ") + "]"
}
