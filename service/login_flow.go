package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/ports"
)

// LoginFlow drives the provider's login ceremonies and returns the proof
// token the session service exchanges for a credential. Each login method is
// a variant of core.LoginRequest dispatched through a single entry point.
type LoginFlow struct {
	auth ports.Authenticator
	log  *slog.Logger
}

// NewLoginFlow creates a new login flow.
func NewLoginFlow(auth ports.Authenticator, log *slog.Logger) *LoginFlow {
	if log == nil {
		log = slog.Default()
	}
	return &LoginFlow{auth: auth, log: log}
}

// Dispatch runs the ceremony for the requested login method.
func (f *LoginFlow) Dispatch(ctx context.Context, req core.LoginRequest) (*core.LoginOutcome, error) {
	switch req.Method {
	case core.LoginMethodEmailLink:
		if req.Email == "" {
			return nil, fmt.Errorf("%w: email is required", core.ErrLoginFailed)
		}
		proof, err := f.auth.LoginWithEmailLink(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		return &core.LoginOutcome{Method: req.Method, ProofToken: proof}, nil

	case core.LoginMethodSocial:
		if req.Provider == "" {
			return nil, fmt.Errorf("%w: provider is required", core.ErrLoginFailed)
		}
		proof, err := f.auth.LoginWithSocial(ctx, req.Provider)
		if err != nil {
			return nil, err
		}
		return &core.LoginOutcome{Method: req.Method, ProofToken: proof}, nil

	case core.LoginMethodWebAuthn:
		if req.Username == "" {
			return nil, fmt.Errorf("%w: username is required", core.ErrLoginFailed)
		}
		return f.webAuthn(ctx, req.Username)

	default:
		return nil, core.ErrUnknownLoginMethod
	}
}

// webAuthn is a two-step machine: attempt a login against an existing
// registration, and only on a ceremony rejection fall back to registering a
// new credential. A provider outage aborts without the fallback so the
// caller can retry the login instead of accidentally registering twice.
func (f *LoginFlow) webAuthn(ctx context.Context, username string) (*core.LoginOutcome, error) {
	proof, loginErr := f.auth.WebAuthnLogin(ctx, username)
	if loginErr == nil {
		return &core.LoginOutcome{
			Method:       core.LoginMethodWebAuthn,
			ProofToken:   proof,
			WebAuthnStep: core.WebAuthnStepLogin,
		}, nil
	}

	if errors.Is(loginErr, core.ErrProviderUnreachable) {
		return nil, loginErr
	}

	f.log.Debug("webauthn login rejected, attempting registration", "username", username, "error", loginErr)

	proof, registerErr := f.auth.WebAuthnRegister(ctx, username)
	if registerErr != nil {
		return nil, fmt.Errorf("webauthn login and registration both failed: %w", errors.Join(loginErr, registerErr))
	}

	return &core.LoginOutcome{
		Method:       core.LoginMethodWebAuthn,
		ProofToken:   proof,
		WebAuthnStep: core.WebAuthnStepRegister,
	}, nil
}
