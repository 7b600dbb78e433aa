package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and whether the database answers a ping.
func Health(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbState := "ok"
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				dbState = "unavailable"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"database":  dbState,
		})
	}
}
