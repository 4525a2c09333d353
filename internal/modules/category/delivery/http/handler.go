package handler

import (
	"net/http"

	"anoa.com/recipehub/internal/modules/category/dto"
	category "anoa.com/recipehub/internal/modules/category/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service category.CategoryService
}

func NewCategoryHandler(service category.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "category created successfully", res)
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	var filter dto.CategoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	categories, err := h.service.GetAllCategories(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", categories)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "category updated successfully", res)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "category deleted successfully", nil)
}
