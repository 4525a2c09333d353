package handler

import (
	"net/http"

	"anoa.com/recipehub/internal/middleware"
	"anoa.com/recipehub/internal/modules/user/dto"
	userService "anoa.com/recipehub/internal/modules/user/service"
	"anoa.com/recipehub/pkg/apperror"
	commonDto "anoa.com/recipehub/pkg/dto"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth  userService.AuthService
	users userService.UserService
}

func NewUserHandler(auth userService.AuthService, users userService.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "user registered successfully", res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", res)
}

func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed successfully", res)
}

func (h *UserHandler) Logout(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), actor); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

func (h *UserHandler) VerifyToken(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.auth.VerifyToken(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	res, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.users.GetProfile(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", res)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.users.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated successfully", res)
}

func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.ResponseError(c, apperror.Validation("image file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.Validation("failed to read image"))
		return
	}
	defer file.Close()

	res, err := h.users.UploadProfilePicture(c.Request.Context(), actor, commonDto.ImageFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile picture updated successfully", res)
}
