package auth

import (
	"errors"
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/model"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login takes OAuth2-style form credentials (username holds the email)
// and answers with a fresh access/refresh token pair. Unknown email,
// unconfirmed account and wrong password are all 401.
func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	email := c.PostForm("username")
	password := c.PostForm("password")

	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Username and password fields can't be empty",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid email",
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

	if !user.Confirmed {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Email not confirmed",
			"requestID": requestID,
		})
		return
	}

	ok, err := d.Hasher.Compare(password, user.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid password",
			"requestID": requestID,
		})
		return
	}

	issueTokenPair(c, d, user, requestID)
}

// issueTokenPair creates a new access/refresh pair, stores the refresh
// token on the user and writes the token response.
func issueTokenPair(c *gin.Context, d *internal.Deps, user *model.User, requestID string) {
	accessToken, err := d.Tokens.Create(user.Email, security.TokenAccess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create access token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	refreshToken, err := d.Tokens.Create(user.Email, security.TokenRefresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Users.SetRefreshToken(user, refreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	})
}
