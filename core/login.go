package core

// LoginMethod identifies which provider ceremony produces a proof token.
type LoginMethod string

const (
	// LoginMethodEmailLink authenticates via a magic link emailed to the user
	LoginMethodEmailLink LoginMethod = "email_link"

	// LoginMethodSocial authenticates via an OAuth redirect to a social provider
	LoginMethodSocial LoginMethod = "social"

	// LoginMethodWebAuthn authenticates via a WebAuthn ceremony
	LoginMethodWebAuthn LoginMethod = "webauthn"
)

// Valid reports whether m is a known login method.
func (m LoginMethod) Valid() bool {
	switch m {
	case LoginMethodEmailLink, LoginMethodSocial, LoginMethodWebAuthn:
		return true
	}
	return false
}

// LoginRequest is the tagged union of per-method login parameters. Only the
// fields belonging to Method are consulted.
type LoginRequest struct {
	Method   LoginMethod `json:"method"`
	Email    string      `json:"email,omitempty"`    // email_link
	Provider string      `json:"provider,omitempty"` // social, e.g. "google"
	Username string      `json:"username,omitempty"` // webauthn
}

// WebAuthnStep names the step of the login->register fallback machine that
// produced an outcome.
type WebAuthnStep string

const (
	WebAuthnStepLogin    WebAuthnStep = "login"
	WebAuthnStepRegister WebAuthnStep = "register"
)

// LoginOutcome reports the proof token obtained from the provider. For
// webauthn it also records which step of the fallback machine succeeded.
type LoginOutcome struct {
	Method       LoginMethod
	ProofToken   string
	WebAuthnStep WebAuthnStep // empty unless Method is webauthn
}
