package contact

import (
	"net/http"

	"contactsapi/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	contact, ok := fetchByParam(c, d, requestID)
	if !ok {
		return
	}

	deleted, err := d.Contacts.Delete(contact)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete contact", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, deleted)
}
