package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vestfab-as/quoting-api/internal/auth"
)

func TestUserContext_HasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		role     string
		expected bool
	}{
		{
			name:     "has role",
			roles:    []string{"manager", "sales"},
			role:     "manager",
			expected: true,
		},
		{
			name:     "does not have role",
			roles:    []string{"sales"},
			role:     "manager",
			expected: false,
		},
		{
			name:     "case insensitive match",
			roles:    []string{"Sales"},
			role:     "sales",
			expected: true,
		},
		{
			name:     "empty roles",
			roles:    []string{},
			role:     "manager",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &auth.UserContext{Roles: tt.roles}
			assert.Equal(t, tt.expected, user.HasRole(tt.role))
		})
	}
}

func TestUserContext_HasAnyRole(t *testing.T) {
	user := &auth.UserContext{Roles: []string{"sales"}}

	assert.True(t, user.HasAnyRole("manager", "sales"))
	assert.False(t, user.HasAnyRole("manager", "admin"))
	assert.False(t, user.HasAnyRole())
}

func TestUserContext_GetDisplayNameInitials(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		expected    string
	}{
		{"two names", "Kari Nordmann", "KN"},
		{"single name", "Kari", "K"},
		{"three names", "Kari Marie Nordmann", "KMN"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &auth.UserContext{DisplayName: tt.displayName}
			assert.Equal(t, tt.expected, user.GetDisplayNameInitials())
		})
	}
}

func TestUserContext_RoundTrip(t *testing.T) {
	user := &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Kari Nordmann",
		Email:       "kari@example.com",
		Roles:       []string{"sales"},
	}

	ctx := auth.WithUserContext(context.Background(), user)

	got, ok := auth.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestFromContext_Missing(t *testing.T) {
	got, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
