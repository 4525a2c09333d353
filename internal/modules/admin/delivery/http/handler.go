package handler

import (
	"net/http"

	"anoa.com/recipehub/internal/middleware"
	adminService "anoa.com/recipehub/internal/modules/admin/service"
	userDto "anoa.com/recipehub/internal/modules/user/dto"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	res, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input userDto.CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.adminService.CreateUser(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "user created successfully", res)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	res, err := h.adminService.GetAllUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
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

	if err := h.adminService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user deleted successfully", nil)
}

func (h *AdminHandler) GetAllComments(c *gin.Context) {
	res, err := h.adminService.GetAllComments(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
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

	res, err := h.adminService.DeleteComment(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "comment deleted successfully", res)
}

func (h *AdminHandler) GetAllRecipes(c *gin.Context) {
	res, err := h.adminService.GetAllRecipes(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *AdminHandler) DeleteRecipe(c *gin.Context) {
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

	if err := h.adminService.DeleteRecipe(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "recipe deleted successfully", nil)
}
