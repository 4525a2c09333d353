package handler

import (
	"net/http"

	"anoa.com/recipehub/internal/middleware"
	"anoa.com/recipehub/internal/modules/comment/dto"
	commentService "anoa.com/recipehub/internal/modules/comment/service"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service commentService.CommentService
}

func NewCommentHandler(service commentService.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateComment(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "comment created successfully", res)
}

func (h *CommentHandler) GetAllComments(c *gin.Context) {
	res, err := h.service.GetAllComments(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *CommentHandler) GetCommentsByRecipeID(c *gin.Context) {
	recipeID, err := policy.ParseID(c.Param("recipe_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetCommentsByRecipeID(c.Request.Context(), recipeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if len(res) == 0 {
		response.Success(c, http.StatusOK, "no comments for this recipe yet", res)
		return
	}
	response.Success(c, http.StatusOK, "", res)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
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

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateComment(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "comment updated successfully", res)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
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

	res, err := h.service.DeleteComment(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "comment deleted successfully", res)
}
