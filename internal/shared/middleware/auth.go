package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by SessionAuth.
const (
	CtxUserID        = "user_id"
	CtxEmail         = "email"
	CtxProvider      = "provider"
	CtxEmailVerified = "email_verified"
)

// SessionAuth verifies the bearer session token the identity provider
// issued and exposes its claims to handlers.
func SessionAuth(sessionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(sessionSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.JSON(401, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			c.JSON(401, gin.H{"error": "invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		if email, ok := claims["email"].(string); ok {
			c.Set(CtxEmail, email)
		}
		if provider, ok := claims["provider"].(string); ok {
			c.Set(CtxProvider, provider)
		}
		if verified, ok := claims["email_verified"].(bool); ok {
			c.Set(CtxEmailVerified, verified)
		}

		c.Next()
	}
}
