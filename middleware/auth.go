package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-cultivation/utils"
)

// PlayerIDKey is the gin context key holding the authenticated player id.
const PlayerIDKey = "playerID"

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(tokens *utils.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Set(PlayerIDKey, claims.PlayerID)
		c.Next()
	}
}
