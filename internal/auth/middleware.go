package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "
const headerLocalKey = "x-local-key"

// RequireOpsToken verifies an operator token and stores the operator id on
// the gin context.
func RequireOpsToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("operator_id", claims.OperatorID)
		c.Next()
	}
}

// RequireLocalKey guards the data-plane endpoints the dialer calls. Plain
// shared-secret comparison; the dialer and the agent share one box or one
// trusted segment.
func RequireLocalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(headerLocalKey)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid local key"})
			return
		}
		c.Next()
	}
}
