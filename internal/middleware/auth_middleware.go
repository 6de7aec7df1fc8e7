package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eazybus/booking-backend/pkg/jwt"
)

const (
	// ContextUserID is the gin context key carrying the authenticated
	// account email.
	ContextUserID = "user_id"

	// RoleAdmin gates the catalog administration surface.
	RoleAdmin = "admin"
)

// Auth verifies the bearer token and stashes the account identity on the
// request context. The token is the trust boundary; issuing and refreshing
// it is the identity provider's business.
func Auth(jwtSvc *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := jwtSvc.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.WithError(err).Debug("Token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set("claims", claims)
		c.Next()
	}
}

// RequireAdmin allows only tokens carrying the admin role. Must run after
// Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Get("claims")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if !claims.(*jwt.Claims).HasRole(RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated account email from the context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
