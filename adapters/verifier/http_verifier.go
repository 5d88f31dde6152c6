package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/ports"
)

const defaultTimeout = 10 * time.Second

// Client talks to the hosted provider's HTTP API. It implements both the
// Verifier port (proof validation, metadata, revocation) and the
// Authenticator port (login ceremonies). Every call carries the configured
// client timeout; a timeout surfaces as core.ErrProviderUnreachable, which
// callers may retry.
type Client struct {
	baseURL   string
	apiSecret string
	http      *http.Client
	log       *slog.Logger
}

// Config holds the provider connection settings.
type Config struct {
	// BaseURL is the provider API root, e.g. https://api.provider.example.
	BaseURL string

	// APISecret authenticates this server to the provider's admin endpoints.
	APISecret string

	// Timeout bounds each provider call. Defaults to 10s.
	Timeout time.Duration

	// Logger is optional.
	Logger *slog.Logger
}

// NewClient creates a new provider client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiSecret: cfg.APISecret,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       cfg.Logger,
	}
}

var (
	_ ports.Verifier      = (*Client)(nil)
	_ ports.Authenticator = (*Client)(nil)
)

// ValidateProof checks a proof token with the provider.
func (c *Client) ValidateProof(ctx context.Context, proofToken string) error {
	status, _, err := c.post(ctx, "/v1/token/validate", map[string]string{"token": proofToken}, proofToken)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusBadRequest:
		return core.ErrProofInvalid
	default:
		return fmt.Errorf("token validation returned status %d: %w", status, core.ErrProviderUnreachable)
	}
}

// AttributesByProof fetches the identity attributes for a proof token.
func (c *Client) AttributesByProof(ctx context.Context, proofToken string) (core.UserAttributes, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/user/metadata", nil)
	if err != nil {
		return core.UserAttributes{}, fmt.Errorf("failed to build metadata request: %w", err)
	}
	c.setHeaders(req, proofToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.UserAttributes{}, fmt.Errorf("metadata request failed: %w", core.ErrProviderUnreachable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return core.UserAttributes{}, core.ErrProofInvalid
	default:
		return core.UserAttributes{}, fmt.Errorf("metadata returned status %d: %w", resp.StatusCode, core.ErrProviderUnreachable)
	}

	var body struct {
		Issuer        string `json:"issuer"`
		PublicAddress string `json:"public_address"`
		Email         string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.UserAttributes{}, fmt.Errorf("failed to decode metadata: %w", err)
	}

	if body.Issuer == "" {
		return core.UserAttributes{}, core.ErrIssuerMissing
	}

	attrs := core.UserAttributes{
		Issuer: body.Issuer,
		Email:  body.Email,
	}

	// The provider reports the public address as an EVM wallet address.
	// Normalize to the checksummed form; pass through anything else verbatim.
	if common.IsHexAddress(body.PublicAddress) {
		attrs.PublicAddress = common.HexToAddress(body.PublicAddress).Hex()
	} else {
		attrs.PublicAddress = body.PublicAddress
	}

	return attrs, nil
}

// RevokeAllByIssuer asks the provider to invalidate all of the issuer's
// outstanding proofs.
func (c *Client) RevokeAllByIssuer(ctx context.Context, issuer string) error {
	status, _, err := c.post(ctx, "/v1/user/logout", map[string]string{"issuer": issuer}, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("revocation returned status %d", status)
	}
	return nil
}

// LoginWithEmailLink starts a magic-link login and waits for the proof token.
func (c *Client) LoginWithEmailLink(ctx context.Context, email string) (string, error) {
	return c.login(ctx, "/v1/login/email_link", map[string]string{"email": email})
}

// LoginWithSocial runs an OAuth login against the named social provider.
func (c *Client) LoginWithSocial(ctx context.Context, provider string) (string, error) {
	return c.login(ctx, "/v1/login/social", map[string]string{"provider": provider})
}

// WebAuthnLogin attempts a WebAuthn assertion for an existing registration.
func (c *Client) WebAuthnLogin(ctx context.Context, username string) (string, error) {
	return c.login(ctx, "/v1/login/webauthn", map[string]string{"username": username})
}

// WebAuthnRegister runs a WebAuthn registration ceremony.
func (c *Client) WebAuthnRegister(ctx context.Context, username string) (string, error) {
	return c.login(ctx, "/v1/register/webauthn", map[string]string{"username": username})
}

// login posts ceremony parameters and extracts the proof token.
func (c *Client) login(ctx context.Context, path string, payload map[string]string) (string, error) {
	status, body, err := c.post(ctx, path, payload, "")
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized || status == http.StatusNotFound || status == http.StatusBadRequest:
		return "", core.ErrLoginFailed
	default:
		return "", fmt.Errorf("login returned status %d: %w", status, core.ErrProviderUnreachable)
	}

	var out struct {
		ProofToken string `json:"proof_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.ProofToken == "" {
		return "", core.ErrLoginFailed
	}
	return out.ProofToken, nil
}

// post sends a JSON body and returns the status code and response body.
// bearer, when non-empty, is sent as the Authorization bearer token.
func (c *Client) post(ctx context.Context, path string, payload any, bearer string) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("provider request failed", "path", path, "error", err)
		return 0, nil, fmt.Errorf("provider request failed: %w", core.ErrProviderUnreachable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read provider response: %w", core.ErrProviderUnreachable)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("X-Api-Secret", c.apiSecret)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}
