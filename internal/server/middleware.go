package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/prepaid/internal/credential/session"
	obscontext "github.com/smallbiznis/prepaid/internal/observability/context"
)

// SessionToken forwards the caller's own bearer token to outbound history
// calls. Requests without one fall back to the persisted token.
func SessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := session.BearerToken(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(session.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// CustomerScope tags the request context with the :id customer for logging.
func CustomerScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.Param("id")); id != "" {
			c.Request = c.Request.WithContext(obscontext.WithCustomerID(c.Request.Context(), id))
		}
		c.Next()
	}
}
