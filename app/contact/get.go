package contact

import (
	"errors"
	"net/http"
	"strconv"

	"contactsapi/internal"
	"contactsapi/internal/model"
	"contactsapi/internal/repo"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Get(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	contact, ok := fetchByParam(c, d, requestID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, contact)
}

// fetchByParam resolves the :id path param to a contact owned by the
// caller. On any miss it writes the 404 itself and reports false; a
// foreign contact looks exactly like a missing one.
func fetchByParam(c *gin.Context, d *internal.Deps, requestID string) (*model.Contact, bool) {
	user := currentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Contact not found",
			"requestID": requestID,
		})
		return nil, false
	}

	contact, err := d.Contacts.Get(uint(id), user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Contact not found",
				"requestID": requestID,
			})
			return nil, false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to get contact", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return contact, true
}
