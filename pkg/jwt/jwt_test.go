package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-secret-key-123456789", time.Hour)

	token, err := svc.Generate("rider@example.com", []string{"passenger", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "rider@example.com", claims.Email)
	assert.Equal(t, "rider@example.com", claims.Subject)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("driver"))
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("test-secret-key-123456789", -time.Minute)

	token, err := svc.Generate("rider@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	svc := NewService("test-secret-key-123456789", time.Hour)
	other := NewService("another-secret", time.Hour)

	token, err := other.Generate("rider@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	svc := NewService("test-secret-key-123456789", time.Hour)

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}
