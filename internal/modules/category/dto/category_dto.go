package dto

import "anoa.com/recipehub/internal/entity"

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Desc string `json:"desc"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Desc *string `json:"desc"`
}

type CategoryFilter struct {
	Search string `form:"search"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

func NewCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Desc: c.Desc}
}
