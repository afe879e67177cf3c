package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/internal/application/services"
)

// ContextKey is the type for gin context keys set by middleware.
type ContextKey string

// SessionMiddleware gates routes that need an active session.
type SessionMiddleware struct {
	sessions  *services.SessionService
	loginPath string
}

// NewSessionMiddleware creates the session gate.
func NewSessionMiddleware(sessions *services.SessionService, loginPath string) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, loginPath: loginPath}
}

// RequireSession rejects requests when no session is active. The response
// names the login path so the frontend can navigate there.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.sessions.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "unauthenticated",
				"error_description": "no active session",
				"redirect":          m.loginPath,
			})
			return
		}
		c.Next()
	}
}

// GetClientIP extracts the client IP, honoring proxy headers.
func GetClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	return c.ClientIP()
}
