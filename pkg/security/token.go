package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the three token flavours the API issues. Each
// kind has its own TTL and a token is only valid for the kind it was
// issued as.
type TokenKind string

const (
	TokenAccess       TokenKind = "access"
	TokenRefresh      TokenKind = "refresh"
	TokenEmailConfirm TokenKind = "email_confirm"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	confirmTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL, confirmTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		confirmTTL: confirmTTL,
	}
}

// Create signs a token of the given kind with the user's email as subject.
func (s *TokenService) Create(email string, kind TokenKind) (string, error) {
	var ttl time.Duration

	switch kind {
	case TokenAccess:
		ttl = s.accessTTL
	case TokenRefresh:
		ttl = s.refreshTTL
	case TokenEmailConfirm:
		ttl = s.confirmTTL
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Scope: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(s.secret)
}

// Decode verifies signature, expiry and kind, and returns the subject
// email. Any mismatch is ErrInvalidToken, callers get no further detail.
func (s *TokenService) Decode(tokenStr string, kind TokenKind) (string, error) {
	var claims tokenClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Scope != string(kind) {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
