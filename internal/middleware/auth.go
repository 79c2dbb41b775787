package middleware

import (
	"net/http"
	"strings"

	"ajnabi/config"
	"ajnabi/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and sets account context keys.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("account_id", claims.AccountID)
		c.Set("phone", claims.Phone)
		c.Next()
	}
}

// GetAccountID returns the authenticated account ID (after AuthRequired).
func GetAccountID(c *gin.Context) uint {
	v, _ := c.Get("account_id")
	id, _ := v.(uint)
	return id
}
