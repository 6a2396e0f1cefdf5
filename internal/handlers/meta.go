package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceMessage is the GET / greeting.
const ServiceMessage = "OGP Verification Service"

// Root describes the service.
func Root(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": ServiceMessage,
			"version": version,
		})
	}
}
