package middleware

import (
	"strings"

	"storefront-be/internal/user"

	"github.com/gin-gonic/gin"
)

const (
	actorKey      = "actor"
	sessionKeyKey = "sessionKey"
)

// Auth parses a Bearer token when present and stores the resulting actor in
// the gin context. Anonymous requests pass through untouched so guest carts
// keep working.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := user.ParseJWT(tokenStr)
			if err == nil {
				c.Set(actorKey, user.Actor{
					ID:       claims.UserID,
					Email:    claims.Email,
					IsSeller: claims.IsSeller,
					IsStaff:  claims.IsStaff,
				})
			}
		}

		if key := c.GetHeader("X-Session-Key"); key != "" {
			c.Set(sessionKeyKey, key)
		}

		c.Next()
	}
}

// RequireAuth aborts with 401 unless an actor was established by Auth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(actorKey); !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (user.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return user.Actor{}, false
	}
	actor, ok := v.(user.Actor)
	return actor, ok
}

// SessionKeyFrom returns the guest session key header, if any.
func SessionKeyFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(sessionKeyKey)
	if !ok {
		return "", false
	}
	key, ok := v.(string)
	return key, ok
}
