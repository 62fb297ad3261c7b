package auth

import (
	"net/http"
	"strings"

	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key the middleware stores the resolved
// session under.
const SessionKey = "session"

type SessionAuth struct {
	store SessionStore
}

func NewSessionAuth(store SessionStore) *SessionAuth {
	return &SessionAuth{store: store}
}

func (a *SessionAuth) Store() SessionStore {
	return a.store
}

// Middleware resolves the bearer token to a session and short-circuits
// with 401 before any handler runs when the token is missing, unknown or
// expired.
func (a *SessionAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		session, err := a.store.Lookup(c.Request.Context(), token)
		if err != nil {
			log.Info("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// CurrentSession pulls the session the middleware attached to the request.
func CurrentSession(c *gin.Context) (*Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}
