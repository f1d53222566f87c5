package auth

import (
	"errors"
	"net/http"
	"strings"

	"contactsapi/internal"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Refresh exchanges a bearer refresh token for a new access/refresh pair.
// A valid token that doesn't match the stored one is treated as stolen or
// stale, the stored token is cleared so the whole session is revoked.
func Refresh(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	header := c.GetHeader("Authorization")
	tokenStr, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Missing bearer token",
			"requestID": requestID,
		})
		return
	}

	email, err := d.Tokens.Decode(tokenStr, security.TokenRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid refresh token",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid refresh token",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.RefreshToken == nil || *user.RefreshToken != tokenStr {
		if err := d.Users.SetRefreshToken(user, ""); err != nil {
			zap.L().Error("Failed to clear refresh token", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid refresh token",
			"requestID": requestID,
		})
		return
	}

	issueTokenPair(c, d, user, requestID)
}
