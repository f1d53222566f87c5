// Package contact contains the per-user contact CRUD endpoints. Every
// handler reads the authenticated user from the context, contacts of
// other users are invisible.
package contact

import (
	"net/http"

	"contactsapi/internal/model"
	"contactsapi/internal/repo"
	"contactsapi/validators"

	"github.com/gin-gonic/gin"
)

type contactBody struct {
	FirstName  string `json:"first_name" binding:"required,max=50"`
	LastName   string `json:"last_name" binding:"required,max=50"`
	Email      string `json:"email" binding:"required,max=50"`
	Phone      string `json:"phone" binding:"required,max=15"`
	BornDate   string `json:"born_date" binding:"required"`
	Additional string `json:"additional" binding:"max=200"`
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet("user").(*model.User)
}

// bindContactData binds and validates the request body. On failure it
// writes the 400 response itself and reports false.
func bindContactData(c *gin.Context, requestID string) (repo.ContactData, bool) {
	var body contactBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return repo.ContactData{}, false
	}

	bornDate, err := validators.BornDateValidator(body.BornDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return repo.ContactData{}, false
	}

	return repo.ContactData{
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Email:      body.Email,
		Phone:      body.Phone,
		BornDate:   bornDate,
		Additional: body.Additional,
	}, true
}
