package middleware

import (
	"net/http"
	"strings"

	"timeswap/utils"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key holding the authenticated user id.
const ActorKey = "userID"

// JWTAuthMiddleware requires a bearer token and stores its subject as the actor.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ActorKey, userID)
		c.Next()
	}
}
