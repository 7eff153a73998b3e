package root

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "PG Backend is running successfully!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
