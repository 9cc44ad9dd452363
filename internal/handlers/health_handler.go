package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "SuperMoment API is active!",
			"version": "1.0.0",
		})
	}
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"service":   "supermoment-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
