package user

import (
	"errors"
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/model"
	"contactsapi/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Avatar uploads the multipart "file" field to object storage and stores
// the resulting public URL on the user.
func Avatar(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	if d.Avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Avatar storage is not configured",
			"requestID": requestID,
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Missing file field",
			"requestID": requestID,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open uploaded file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	url, err := d.Avatars.Upload(c.Request.Context(), file, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Unsupported image type",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if _, err := d.Users.SetAvatar(user.Email, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store avatar URL", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar": url,
	})
}
