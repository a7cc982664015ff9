package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockroom/internal/domain"
)

const identityKey = "stockroom.identity"

// Identity is the verified token subject attached to the request scope.
type Identity struct {
	UserID int64
	Role   domain.Role
}

func identityFrom(c *gin.Context) Identity {
	ident, _ := c.Get(identityKey)
	id, _ := ident.(Identity)
	return id
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired extracts and verifies the bearer token, attaching the
// resulting identity to the request. It never reveals why verification
// failed; the cause is only logged.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := h.issuer.Verify(token)
		if err != nil {
			h.logger.WithField("path", c.FullPath()).Debugf("token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, Identity{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// adminRequired must run after authRequired so that a missing token is
// reported as 401 before any 403.
func (h *Handler) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identityFrom(c).Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
