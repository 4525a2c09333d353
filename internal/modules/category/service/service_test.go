package category

import (
	"context"
	"testing"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/category/dto"
	"anoa.com/recipehub/internal/modules/category/repository"
	"anoa.com/recipehub/internal/testutil"
	"anoa.com/recipehub/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db))
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "  Snacks ", Desc: "small bites"})
	require.NoError(t, err)
	assert.Equal(t, "Snacks", created.Name)

	_, err = svc.CreateCategory(ctx, dto.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	found, err := svc.GetAllCategories(ctx, dto.CategoryFilter{Search: "snack"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	_, err = svc.UpdateCategory(ctx, created.ID, dto.UpdateCategoryRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	name := "Street Food"
	updated, err := svc.UpdateCategory(ctx, created.ID, dto.UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Street Food", updated.Name)
	assert.Equal(t, "small bites", updated.Desc)

	require.NoError(t, svc.DeleteCategory(ctx, created.ID))

	_, err = svc.GetCategoryByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteCategory_RefusedWhileReferenced(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	owner := testutil.CreateUser(t, db, "cook", entity.RoleUser)
	category := testutil.CreateCategory(t, db, "Dessert")
	testutil.CreateRecipe(t, db, owner, category)

	err := svc.DeleteCategory(context.Background(), category.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)
	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Category{}, "id = ?", category.ID))
}

func TestDeleteCategory_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	err := svc.DeleteCategory(context.Background(), 77)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
