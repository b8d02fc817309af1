package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminAuth protects the lead and admin endpoints. Accepts either
// X-Admin-Key: <key> or Authorization: Bearer <key>.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Key unset: endpoints run unprotected (warned at startup).
		if adminKey == "" {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-Admin-Key")
		if apiKey == "" {
			auth := c.GetHeader("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = auth[len("Bearer "):]
			}
		}

		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Missing admin API key",
				"hint":  "Add X-Admin-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if apiKey != adminKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid admin API key",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
