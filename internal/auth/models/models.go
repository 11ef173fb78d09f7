package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "romportal/pkg/domain-errors"
)

// Role gates admin operations. Encoders issue and edit; only admins delete.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleEncoder Role = "encoder"
)

// ParseRole accepts "admin" or "encoder", case-insensitively. Empty means admin.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleAdmin:
		return RoleAdmin, nil
	case RoleEncoder:
		return RoleEncoder, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("role must be one of [%s %s]", RoleAdmin, RoleEncoder))
	}
}

func (r Role) String() string { return string(r) }

// AdminUser is a portal operator who signs in with email and password.
type AdminUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAdminUser builds an admin from an already hashed password.
func NewAdminUser(email, passwordHash string, role Role, now time.Time) (*AdminUser, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password hash is required")
	}
	return &AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// Session is a signed-in admin and the bearer token that represents them.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *AdminUser
}

// CreateAdmin is the input for registering an operator account.
type CreateAdmin struct {
	Email    string
	Password string
	Role     Role
}
