package security_test

import (
	"testing"
	"time"

	"contactsapi/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService() *security.TokenService {
	return security.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTokenService()

	for _, kind := range []security.TokenKind{
		security.TokenAccess,
		security.TokenRefresh,
		security.TokenEmailConfirm,
	} {
		token, err := s.Create("alice@example.com", kind)
		require.NoError(t, err)

		email, err := s.Decode(token, kind)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email)
	}
}

func TestTokenKindMismatch(t *testing.T) {
	s := newTokenService()

	token, err := s.Create("alice@example.com", security.TokenRefresh)
	require.NoError(t, err)

	_, err = s.Decode(token, security.TokenAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)

	_, err = s.Decode(token, security.TokenEmailConfirm)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	s := security.NewTokenService("test-secret", -time.Minute, -time.Minute, -time.Minute)

	token, err := s.Create("alice@example.com", security.TokenAccess)
	require.NoError(t, err)

	_, err = s.Decode(token, security.TokenAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	s := newTokenService()
	other := security.NewTokenService("other-secret", 15*time.Minute, time.Hour, time.Hour)

	token, err := other.Create("alice@example.com", security.TokenAccess)
	require.NoError(t, err)

	_, err = s.Decode(token, security.TokenAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	s := newTokenService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := s.Decode(token, security.TokenAccess)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	}
}

func TestCreateUnknownKind(t *testing.T) {
	s := newTokenService()

	_, err := s.Create("alice@example.com", security.TokenKind("session"))
	assert.Error(t, err)
}
