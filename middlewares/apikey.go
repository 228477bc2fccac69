package middlewares

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireAPIKey guards the admin surface. Admin tooling authenticates
// with a static key; there is no password login in this API.
func RequireAPIKey() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		expected := os.Getenv("ADMIN_API_KEY")
		if expected == "" {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Admin API key not configured"})
			return
		}
		if ctx.GetHeader("X-API-KEY") != expected {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
			return
		}
		ctx.Next()
	}
}
