// Package auth contains the signup, login, token-refresh and
// email-confirmation endpoints.
package auth

import (
	"errors"
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"
	"contactsapi/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signupBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Signup(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data signupBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Hasher.Hash(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Users.Create(data.Email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Account already exists",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	sendConfirmation(d, user.Email, requestID)

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
		"detail":    "User successfully created",
		"requestID": requestID,
	})
}

// sendConfirmation mails the confirmation link in the background. The
// request never waits on SMTP and failures are only logged.
func sendConfirmation(d *internal.Deps, email, requestID string) {
	if d.Mailer == nil {
		zap.L().Warn("Mail is not configured, skipping confirmation email", zap.String("requestID", requestID))
		return
	}

	token, err := d.Tokens.Create(email, security.TokenEmailConfirm)
	if err != nil {
		zap.L().Error("Failed to create confirmation token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	go func() {
		if err := d.Mailer.SendConfirmation(email, token); err != nil {
			zap.L().Error("Failed to send confirmation email", zap.Error(err), zap.String("requestID", requestID))
		}
	}()
}
