// Package middleware holds the gin middleware chain: request logging, metrics,
// CORS, bearer-token auth and per-client rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/auth"
)

// IdentityKey is the gin context key holding the authenticated email.
const IdentityKey = "user_email"

// AuthRequired resolves the bearer token to an identity and stores it under
// IdentityKey. Requests without a valid token are aborted with 401.
func AuthRequired(resolver auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is missing"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := resolver.ResolveIdentity(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(apperror.HTTPStatus(err), gin.H{"error": apperror.PublicMessage(err)})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// Identity returns the email stored by AuthRequired.
func Identity(c *gin.Context) (string, bool) {
	email := c.GetString(IdentityKey)
	return email, email != ""
}
