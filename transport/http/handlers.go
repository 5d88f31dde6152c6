package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/service"
)

// SessionHandlers contains HTTP handlers for the session endpoints.
type SessionHandlers struct {
	sessions      *service.SessionService
	flow          *service.LoginFlow
	cookies       CookiePolicy
	loginRedirect string
	log           *slog.Logger
}

// NewSessionHandlers creates new session handlers. loginRedirect is where
// logout sends the browser; defaults to /login.
func NewSessionHandlers(sessions *service.SessionService, flow *service.LoginFlow, cookies CookiePolicy, loginRedirect string, log *slog.Logger) *SessionHandlers {
	if loginRedirect == "" {
		loginRedirect = "/login"
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionHandlers{
		sessions:      sessions,
		flow:          flow,
		cookies:       cookies,
		loginRedirect: loginRedirect,
		log:           log,
	}
}

// userPayload is the public shape of a session in responses.
type userPayload struct {
	Issuer        string `json:"issuer"`
	PublicAddress string `json:"publicAddress"`
	Email         string `json:"email"`
}

// Login exchanges the bearer proof token for a session cookie.
func (h *SessionHandlers) Login(c *gin.Context) {
	proof, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "Missing or malformed Authorization header"})
		return
	}

	token, cred, err := h.sessions.IssueSession(c.Request.Context(), proof)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrProofInvalid), errors.Is(err, core.ErrEmptyProof), errors.Is(err, core.ErrIssuerMissing):
			proofRejections.Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"code": "proof_invalid", "message": "Proof token is invalid or expired"})
		case errors.Is(err, core.ErrProviderUnreachable):
			c.JSON(http.StatusBadGateway, gin.H{"code": "provider_unreachable", "message": "Authentication provider unreachable"})
		default:
			h.log.Error("session issuance failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "Failed to issue session"})
		}
		return
	}

	sessionsIssued.Inc()
	h.cookies.Set(c, token)
	c.JSON(http.StatusOK, gin.H{"done": true, "issuer": cred.Issuer})
}

// LoginStart runs a provider login ceremony and returns the proof token the
// client then presents to Login.
func (h *SessionHandlers) LoginStart(c *gin.Context) {
	var req core.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "Invalid request"})
		return
	}

	outcome, err := h.flow.Dispatch(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnknownLoginMethod):
			c.JSON(http.StatusBadRequest, gin.H{"code": "unknown_method", "message": "Unknown login method"})
		case errors.Is(err, core.ErrProviderUnreachable):
			c.JSON(http.StatusBadGateway, gin.H{"code": "provider_unreachable", "message": "Authentication provider unreachable"})
		case errors.Is(err, core.ErrLoginFailed):
			c.JSON(http.StatusUnauthorized, gin.H{"code": "login_failed", "message": "Login attempt rejected"})
		default:
			h.log.Error("login dispatch failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": "Login failed"})
		}
		return
	}

	resp := gin.H{"proof_token": outcome.ProofToken, "method": outcome.Method}
	if outcome.WebAuthnStep != "" {
		resp["webauthn_step"] = outcome.WebAuthnStep
	}
	c.JSON(http.StatusOK, resp)
}

// User reports the current session, refreshing its sliding window. This
// endpoint never errors: an absent, invalid, or expired session is a normal
// anonymous state reported as {"user": null}.
func (h *SessionHandlers) User(c *gin.Context) {
	cred := sessionFromContext(c)
	if cred == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	token, refreshed, err := h.sessions.RefreshSession(c.Request.Context(), cred)
	if err != nil {
		// Keep serving the still-valid session; the window just doesn't slide
		h.log.Warn("session refresh failed", "issuer", cred.Issuer, "error", err)
		refreshed = cred
	} else {
		sessionsRefreshed.Inc()
		h.cookies.Set(c, token)
	}

	c.JSON(http.StatusOK, gin.H{"user": userPayload{
		Issuer:        refreshed.Issuer,
		PublicAddress: refreshed.PublicAddress,
		Email:         refreshed.Email,
	}})
}

// Logout revokes the issuer's proofs upstream, clears the cookie, and
// redirects to the login page. The cookie is cleared even when upstream
// revocation fails; the failure is reported in a warning header since the
// browser follows the redirect either way.
func (h *SessionHandlers) Logout(c *gin.Context) {
	cred := sessionFromContext(c)
	if cred == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User is not logged in"})
		return
	}

	err := h.sessions.RevokeSession(c.Request.Context(), cred)
	if err != nil {
		h.log.Warn("logout revocation failed", "issuer", cred.Issuer, "error", err)
		c.Header("X-Revocation-Warning", "upstream revocation failed; local session cleared")
	}

	sessionsRevoked.Inc()
	h.cookies.Clear(c)
	c.Redirect(http.StatusFound, h.loginRedirect)
}

// Healthz is a liveness probe.
func (h *SessionHandlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
