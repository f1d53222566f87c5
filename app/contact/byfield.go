package contact

import (
	"net/http"

	"contactsapi/internal"
	"contactsapi/internal/repo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ByField looks contacts up by one of id, first_name, last_name or email.
// An unknown field or a value that matches nothing both end up as an
// empty result, which this endpoint reports as 404.
func ByField(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := currentUser(c)

	field := c.Query("field")
	value := c.Query("value")

	if field == "" || value == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Both field and value query parameters are required",
			"requestID": requestID,
		})
		return
	}

	contacts, err := d.Contacts.FindBy(repo.LookupField(field), value, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to find contacts", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if len(contacts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "No contact found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, contacts)
}
