package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose token does not carry the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("userRole")
		if userRole != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
