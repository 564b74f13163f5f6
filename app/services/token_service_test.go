// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killaresto/killa-backend/models"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			useRSAKeys:  false,
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing symmetric key",
			useRSAKeys:  false,
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "RSA mode without keys",
			useRSAKeys:  true,
			secretKey:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(
				15*time.Minute, 7*24*time.Hour,
				"test-issuer", "test-audience",
				tt.useRSAKeys, "", "", tt.secretKey,
			)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	tests := []struct {
		name   string
		userID uint
		role   string
	}{
		{name: "regular user", userID: 123, role: models.RoleUser},
		{name: "owner", userID: 1, role: models.RoleOwner},
		{name: "large user ID", userID: 999999999, role: models.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessToken, refreshToken, err := service.GenerateTokens(tt.userID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
			assert.NotEqual(t, accessToken, refreshToken)
		})
	}
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(123, models.RoleOwner)
	require.NoError(t, err)

	t.Run("access token claims", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(123), claims.UserID)
		assert.Equal(t, models.RoleOwner, claims.Role)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(time.Now()))
	})

	t.Run("refresh token claims", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(123), claims.UserID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("distinct token IDs per issuance", func(t *testing.T) {
		secondAccess, _, err := service.GenerateTokens(123, models.RoleOwner)
		require.NoError(t, err)

		first, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		second, err := service.ValidateToken(secondAccess)
		require.NoError(t, err)
		assert.NotEqual(t, first.TokenID, second.TokenID)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)

		_, err = service.ValidateToken("")
		assert.Error(t, err)
	})

	t.Run("token signed with different key rejected", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience",
			false, "", "", "a-completely-different-signing-key",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(7, models.RoleUser)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreign)
		assert.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42, models.RoleUser)
	require.NoError(t, err)

	t.Run("issues a new token pair", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)
		assert.Equal(t, "access", claims.TokenType)

		claims, err = service.ValidateToken(newRefresh)
		require.NoError(t, err)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("access token is not accepted for refresh", func(t *testing.T) {
		_, _, err := service.RefreshToken(accessToken)
		assert.Error(t, err)
	})

	t.Run("garbage is not accepted for refresh", func(t *testing.T) {
		_, _, err := service.RefreshToken("garbage")
		assert.Error(t, err)
	})
}
