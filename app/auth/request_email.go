package auth

import (
	"errors"
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/repo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type requestEmailBody struct {
	Email string `json:"email"`
}

// RequestEmail re-sends the confirmation mail. Unknown addresses get the
// same reply as known ones so the endpoint can't be used to probe which
// emails are registered.
func RequestEmail(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data requestEmailBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Users.GetByEmail(data.Email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Check your email for confirmation.",
		})
		return
	}

	if user.Confirmed {
		c.JSON(http.StatusOK, gin.H{
			"message": "Your email is already confirmed",
		})
		return
	}

	sendConfirmation(d, user.Email, requestID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Check your email for confirmation.",
	})
}
