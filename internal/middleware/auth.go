package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextIsAdmin  = "is_admin"
	ContextClaims   = "claims"
)

// TokenValidator is an interface for validating auth tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := extractToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token header."})
			return
		}
		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// Claims returns the validated token claims, or nil for anonymous requests.
func Claims(c *gin.Context) *types.TokenClaims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.TokenClaims)
	return claims
}

func setClaims(c *gin.Context, claims *types.TokenClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextIsAdmin, claims.IsAdmin)
	c.Set(ContextClaims, claims)
}

// extractToken accepts "Token <jwt>" and "Bearer <jwt>".
func extractToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return token, true
}
