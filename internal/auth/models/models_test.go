package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "romportal/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"": RoleAdmin, "Admin": RoleAdmin, " encoder ": RoleEncoder} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("owner")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewAdminUser(t *testing.T) {
	now := time.Date(2026, 3, 27, 0, 0, 0, 0, time.UTC)

	user, err := NewAdminUser("  Registrar@Example.com ", "hash", RoleEncoder, now)
	require.NoError(t, err)
	assert.Equal(t, "registrar@example.com", user.Email)
	assert.Equal(t, RoleEncoder, user.Role)
	assert.Equal(t, now, user.CreatedAt)
	assert.NotEmpty(t, user.ID)

	_, err = NewAdminUser("not-an-email", "hash", RoleAdmin, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = NewAdminUser("a@b.c", "", RoleAdmin, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
