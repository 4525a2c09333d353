package handler

import (
	"net/http"

	"anoa.com/recipehub/internal/middleware"
	"anoa.com/recipehub/internal/modules/rating/dto"
	ratingService "anoa.com/recipehub/internal/modules/rating/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	service ratingService.RatingService
}

func NewRatingHandler(service ratingService.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

func (h *RatingHandler) SubmitRating(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.SubmitRating(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if res.Updated {
		response.Success(c, http.StatusOK, "rating updated successfully", res)
		return
	}
	response.Success(c, http.StatusCreated, "rating submitted successfully", res)
}

func (h *RatingHandler) GetAllRatings(c *gin.Context) {
	res, err := h.service.GetAllRatings(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *RatingHandler) GetRatingsByRecipe(c *gin.Context) {
	recipeID, err := policy.ParseID(c.Param("recipe_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetRatingsByRecipe(c.Request.Context(), recipeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "OK",
		"data":           res.Ratings,
		"average_rating": res.AverageRating,
		"count":          res.Count,
	})
}

func (h *RatingHandler) GetMyRating(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	recipeID, err := policy.ParseID(c.Param("recipe_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetMyRating(c.Request.Context(), actor, recipeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *RatingHandler) UpdateMyRating(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	recipeID, err := policy.ParseID(c.Param("recipe_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateMyRating(c.Request.Context(), actor, recipeID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "rating updated successfully", res)
}

func (h *RatingHandler) DeleteRating(c *gin.Context) {
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

	res, err := h.service.DeleteRating(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "rating deleted successfully", res)
}
