package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/service"
)

// sessionKey is the gin context key holding the verified credential.
const sessionKey = "sessionCredential"

// LoadSession verifies the session cookie and stores the credential in the
// request context. It never aborts: an absent or invalid cookie just leaves
// the request anonymous. Denylist lookup failures are swallowed to anonymous
// as well, since the session-check contract forbids surfacing errors.
func LoadSession(sessions *service.SessionService, cookies CookiePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := sessions.VerifySession(c.Request.Context(), cookies.Read(c))
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		if cred != nil {
			c.Set(sessionKey, cred)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 when LoadSession found no valid credential.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(sessionKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User is not logged in"})
			return
		}
		c.Next()
	}
}

// sessionFromContext returns the credential stored by LoadSession, if any.
func sessionFromContext(c *gin.Context) *core.SessionCredential {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	cred, ok := v.(*core.SessionCredential)
	if !ok {
		return nil
	}
	return cred
}
