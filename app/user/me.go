// Package user contains the authenticated user endpoints.
package user

import (
	"net/http"

	"contactsapi/internal/model"

	"github.com/gin-gonic/gin"
)

func Me(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"avatar": user.Avatar,
	})
}
