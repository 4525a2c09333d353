package dto

import "anoa.com/recipehub/internal/entity"

// UpdateProfileRequest requires at least one field.
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.Email == nil
}

// CreateUserRequest is the admin variant of registration with an explicit role.
type CreateUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=50"`
	Email    string      `json:"email" binding:"required,email,max=100"`
	Password string      `json:"password" binding:"required,min=8,max=100"`
	Roles    entity.Role `json:"roles" binding:"omitempty,oneof=user admin"`
}

func NewUserViews(users []*entity.User) []entity.UserView {
	res := make([]entity.UserView, 0, len(users))
	for _, u := range users {
		res = append(res, u.View())
	}
	return res
}
