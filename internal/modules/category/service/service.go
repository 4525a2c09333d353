package category

import (
	"context"
	"strings"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/category/dto"
	"anoa.com/recipehub/internal/modules/category/repository"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/validator"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
	GetCategoryByID(ctx context.Context, id uint) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uint, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name: req.Name,
		Desc: strings.TrimSpace(req.Desc),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, filter.Search)
	if err != nil {
		return nil, err
	}

	res := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		res = append(res, dto.NewCategoryResponse(cat))
	}
	return res, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if req.Name == nil && req.Desc == nil {
		return nil, apperror.Validation("at least one field must be provided")
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Desc != nil {
		category.Desc = strings.TrimSpace(*req.Desc)
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

// DeleteCategory is refused while any recipe still references the category.
func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
