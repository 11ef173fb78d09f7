package handler

import (
	"strings"

	"romportal/internal/auth/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = models.NormalizeEmail(r.Email)
	return validation.Struct(r)
}

// CreateAdminRequest is the body of POST /admin/users.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin encoder"`
}

func (r *CreateAdminRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = models.NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	return validation.Struct(r)
}

func (r *CreateAdminRequest) toCommand() models.CreateAdmin {
	return models.CreateAdmin{
		Email:    r.Email,
		Password: r.Password,
		Role:     models.Role(r.Role),
	}
}
