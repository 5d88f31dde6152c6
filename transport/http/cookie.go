package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "token"

// CookiePolicy encodes how the session credential is carried: HTTP-only,
// SameSite=Lax, host-only unless a domain is configured, Secure outside
// development.
type CookiePolicy struct {
	Name   string
	Domain string // empty for host-only
	Secure bool
	MaxAge time.Duration
}

// Set writes the signed credential as the session cookie.
func (p CookiePolicy) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(p.name(), token, int(p.MaxAge.Seconds()), "/", p.Domain, p.Secure, true)
}

// Clear expires the session cookie.
func (p CookiePolicy) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(p.name(), "", -1, "/", p.Domain, p.Secure, true)
}

// Read returns the raw cookie value, or "" when the cookie is absent.
func (p CookiePolicy) Read(c *gin.Context) string {
	value, err := c.Cookie(p.name())
	if err != nil {
		return ""
	}
	return value
}

func (p CookiePolicy) name() string {
	if p.Name == "" {
		return DefaultCookieName
	}
	return p.Name
}
