package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey is a private type for context keys. Using a custom type
// prevents collisions with other packages.
type contextKey string

const (
	// loggerCtxKey stores the request-scoped logger in the request context.
	loggerCtxKey = contextKey("logger")

	// userIDKey stores the authenticated user's ID in the request context.
	userIDKey = contextKey("userID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context, falling back to the request context. The boolean reports whether
// it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		if userID, ok := v.(string); ok {
			return userID, true
		}
		return "", false
	}
	if v := c.Request.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	return "", false
}

// GetUserIDFromCtx retrieves the authenticated user ID from a standard
// context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	if v := ctx.Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	return "", false
}
