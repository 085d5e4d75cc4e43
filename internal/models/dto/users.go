package dto

import "github.com/hongminglow/users-api/internal/models"

type CreateUserRequest struct {
	Username string `json:"username" example:"andi17x"`
	Name     string `json:"name" example:"Andi"`
	Email    string `json:"email" example:"andi@gmail.com"`
	Password string `json:"password" example:"adminpassword12"`
	Profile  string `json:"profile" example:"Editor"`
}

// UpdateUserRequest is a partial body; omitted fields keep their stored value.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" example:"andi17x"`
	Name     *string `json:"name,omitempty" example:"Andi"`
	Email    *string `json:"email,omitempty" example:"andi@gmail.com"`
	Password *string `json:"password,omitempty" example:"adminpassword12"`
	Profile  *string `json:"profile,omitempty" example:"Editor"`
}

type LoginRequest struct {
	Username string `json:"username" example:"andi17x"`
	Password string `json:"password" example:"adminpassword12"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
