package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FighterMiddleware validates fighter JWT tokens and protects routes
func FighterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("wallet", claims.Wallet)
		c.Set("fighter_name", claims.Name)

		c.Next()
	}
}

// GetWallet retrieves the authenticated fighter's wallet from the context
func GetWallet(c *gin.Context) (string, bool) {
	wallet, exists := c.Get("wallet")
	if !exists {
		return "", false
	}

	w, ok := wallet.(string)
	return w, ok
}
