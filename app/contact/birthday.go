package contact

import (
	"net/http"
	"time"

	"contactsapi/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Birthday lists the caller's contacts whose birthday anniversary falls
// within the next 7 days.
func Birthday(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := currentUser(c)

	contacts, err := d.Contacts.UpcomingBirthdays(user.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to compute upcoming birthdays", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, contacts)
}
