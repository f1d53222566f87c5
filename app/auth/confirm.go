package auth

import (
	"errors"
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/repo"
	"contactsapi/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfirmEmail handles the link from the confirmation mail. Confirming
// twice is harmless, the second visit just gets told it's already done.
func ConfirmEmail(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	email, err := d.Tokens.Decode(c.Param("token"), security.TokenEmailConfirm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Verification error",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Verification error",
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

	if user.Confirmed {
		c.JSON(http.StatusOK, gin.H{
			"message": "Your email is already confirmed",
		})
		return
	}

	if err := d.Users.Confirm(email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to confirm user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email confirmed",
	})
}
