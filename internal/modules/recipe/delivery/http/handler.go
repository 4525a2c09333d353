package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"anoa.com/recipehub/internal/middleware"
	"anoa.com/recipehub/internal/modules/recipe/dto"
	recipeService "anoa.com/recipehub/internal/modules/recipe/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	commonDto "anoa.com/recipehub/pkg/dto"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

const imageField = "image"

type RecipeHandler struct {
	service recipeService.RecipeService
}

func NewRecipeHandler(service recipeService.RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// formImage returns nil when the request carries no image part.
func formImage(c *gin.Context) (*commonDto.ImageFile, multipart.File, error) {
	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, apperror.Validation("failed to read image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperror.Validation("failed to read image")
	}

	return &commonDto.ImageFile{Reader: file, FileName: fileHeader.Filename}, file, nil
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	image, file, err := formImage(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	res, err := h.service.CreateRecipe(c.Request.Context(), actor, req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "recipe created successfully", res)
}

func (h *RecipeHandler) GetAllRecipes(c *gin.Context) {
	var query dto.RecipeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.GetAllRecipes(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "OK",
		"data":   res.Data,
		"meta":   res.Meta,
	})
}

func (h *RecipeHandler) GetRecipeByID(c *gin.Context) {
	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *RecipeHandler) GetRecipesByUserID(c *gin.Context) {
	userID, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetRecipesByUserID(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.ResponseError(c, apperror.Validation("query parameter q is required"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ResponseError(c, apperror.Validation("limit must be a number"))
			return
		}
		limit = n
	}

	res, err := h.service.SearchRecipes(c.Request.Context(), q, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	image, file, err := formImage(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	res, err := h.service.UpdateRecipe(c.Request.Context(), actor, id, req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "recipe updated successfully", res)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := policy.ParseID(c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteRecipe(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "recipe deleted successfully", nil)
}
