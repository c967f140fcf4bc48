package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// OIDCConfig configures the connection to the institution identity
// provider.
type OIDCConfig struct {
	// Issuer is the provider base URL; endpoints are discovered from
	// {issuer}/.well-known/openid-configuration.
	Issuer string
	// ClientID is the registered OAuth client ID.
	ClientID string
	// ClientSecret may be empty for public clients using PKCE only.
	ClientSecret string
	// RedirectURL is the absolute callback URL of this deployment.
	RedirectURL string
	// HTTPClient is used for discovery and token exchange. A default
	// client with a timeout is created when nil.
	HTTPClient *http.Client
}

// OIDCClient talks to the identity provider: builds the authorize
// redirect, exchanges the code, and verifies the returned ID token
// against the provider's JWKS.
type OIDCClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	issuer       string
	authorizeURL string
	tokenURL     string
	httpClient   *http.Client
	keys         keyfunc.Keyfunc
}

// discoveryDocument is the subset of the OIDC discovery response we use.
type discoveryDocument struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// NewOIDCClient discovers the provider endpoints and starts background
// JWKS refresh.
func NewOIDCClient(ctx context.Context, cfg OIDCConfig) (*OIDCClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	wellKnown := strings.TrimSuffix(cfg.Issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, fmt.Errorf("building discovery request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching provider discovery document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider discovery returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding discovery document: %w", err)
	}
	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.JWKSURI == "" {
		return nil, fmt.Errorf("discovery document is missing required endpoints")
	}

	keys, err := keyfunc.NewDefaultCtx(ctx, []string{doc.JWKSURI})
	if err != nil {
		return nil, fmt.Errorf("loading provider JWKS: %w", err)
	}

	return &OIDCClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		issuer:       cfg.Issuer,
		authorizeURL: doc.AuthorizationEndpoint,
		tokenURL:     doc.TokenEndpoint,
		httpClient:   httpClient,
		keys:         keys,
	}, nil
}

// PKCE holds the code verifier/challenge pair for one sign-in flow
// (RFC 7636, S256).
type PKCE struct {
	Verifier  string
	Challenge string
}

// NewPKCE generates a fresh verifier and its S256 challenge.
func NewPKCE() (*PKCE, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("generating code verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	return &PKCE{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}

// AuthCodeURL builds the provider authorize URL for a browser redirect.
func (c *OIDCClient) AuthCodeURL(state string, pkce *PKCE) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	q.Set("code_challenge", pkce.Challenge)
	q.Set("code_challenge_method", "S256")
	return c.authorizeURL + "?" + q.Encode()
}

// Exchange trades the authorization code for tokens and returns the raw
// ID token.
func (c *OIDCClient) Exchange(ctx context.Context, code, verifier string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURL)
	form.Set("client_id", c.clientID)
	form.Set("code_verifier", verifier)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchanging authorization code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokens struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tokens.IDToken == "" {
		return "", fmt.Errorf("token response has no id_token")
	}
	return tokens.IDToken, nil
}

// Identity is what the provider asserts about the signed-in person.
type Identity struct {
	Email string
	Name  string
}

type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// VerifyIDToken checks the ID token signature against the provider JWKS
// and validates issuer and audience, returning the asserted identity.
func (c *OIDCClient) VerifyIDToken(raw string) (*Identity, error) {
	var claims idTokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, c.keys.Keyfunc,
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verifying id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid id token")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id token has no email claim")
	}
	return &Identity{Email: claims.Email, Name: claims.Name}, nil
}
