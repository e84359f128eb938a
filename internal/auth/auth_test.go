package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService(Config{Secret: "test-secret"})

	token, err := service.GenerateToken(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "vehicle-health", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := NewService(Config{Secret: "test-secret"})
	other := NewService(Config{Secret: "different-secret"})

	token, err := service.GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService(Config{
		Secret:   "test-secret",
		Duration: -time.Hour,
	})

	token, err := service.GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	service := NewService(Config{Secret: "test-secret"})

	_, err := service.ValidateToken("not.a.token")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ValidateToken("")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestTokenDuration_Default(t *testing.T) {
	service := NewService(Config{Secret: "test-secret"})
	assert.Equal(t, 24*time.Hour, service.TokenDuration())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret!", hash)

	assert.True(t, CheckPassword("Sup3rSecret!", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
	assert.False(t, CheckPassword("Sup3rSecret!", "not-a-hash"))
}
