// Package root contains the unauthenticated service endpoints.
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"AppName": "Contacts",
	})
}

// Heartbeat is used by load balancers to check if the server is alive.
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
