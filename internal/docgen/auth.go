package docgen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAuthNotConfigured signals that no usable credentials are present. The
// caller decides whether to fail the request or fall back to a mocked result.
var ErrAuthNotConfigured = errors.New("missing authentication: set FOXIT_ACCESS_TOKEN or FOXIT_TOKEN_URL, or provide FOXIT_CLIENT_ID and FOXIT_CLIENT_SECRET")

// AuthContext is the header set resolved for one outbound call chain. Tokens
// are not cached across calls; each chain re-resolves auth.
type AuthContext struct {
	Authorization string
	ClientID      string
	ClientSecret  string
}

// Apply sets the resolved auth headers on an outbound request. Some endpoints
// require the explicit client_id/client_secret headers alongside the
// Authorization header, so both are always attached when present.
func (a AuthContext) Apply(h http.Header) {
	if a.Authorization != "" {
		h.Set("Authorization", a.Authorization)
	}
	if a.ClientID != "" {
		h.Set("client_id", a.ClientID)
	}
	if a.ClientSecret != "" {
		h.Set("client_secret", a.ClientSecret)
	}
}

// resolveAuth produces the header set for outbound calls: a direct access
// token wins, then an OAuth client-credentials exchange, then HTTP Basic.
// It fails before any provider request is made when nothing resolves.
func (c *Client) resolveAuth(ctx context.Context) (AuthContext, error) {
	auth := AuthContext{ClientID: c.cfg.ClientID, ClientSecret: c.cfg.ClientSecret}

	token, err := c.accessToken(ctx)
	if err != nil {
		return AuthContext{}, err
	}

	switch {
	case token != "":
		auth.Authorization = "Bearer " + token
	case c.cfg.ClientID != "" && c.cfg.ClientSecret != "":
		auth.Authorization = "Basic " + basicCredentials(c.cfg.ClientID, c.cfg.ClientSecret)
	default:
		return AuthContext{}, ErrAuthNotConfigured
	}
	return auth, nil
}

// accessToken returns a bearer token, or "" when the bearer flow is not
// configured and the caller should fall back to Basic.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken, nil
	}
	if c.cfg.TokenURL == "" {
		return "", nil
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("missing client id/secret for token request to %s", c.cfg.TokenURL)
	}

	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if c.cfg.Scope != "" {
		cc.Scopes = []string{c.cfg.Scope}
	}

	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	return tok.AccessToken, nil
}

func basicCredentials(id, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(id + ":" + secret))
}
