package esign

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAuthNotConfigured signals that no eSign bearer token can be resolved.
// The send flow treats this as a cue to return a mocked result.
var ErrAuthNotConfigured = errors.New("missing eSign auth: set FOXIT_ESIGN_ACCESS_TOKEN or FOXIT_ESIGN_TOKEN_URL with client id/secret")

// accessToken resolves a bearer token: direct token first, then a
// client-credentials exchange against the configured token URL. Returns ""
// when no bearer flow is configured at all.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken, nil
	}
	if c.cfg.TokenURL == "" {
		return "", nil
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("missing eSign client id/secret for token request to %s", c.cfg.TokenURL)
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
		return "", fmt.Errorf("eSign token exchange: %w", err)
	}
	return tok.AccessToken, nil
}

// authHeader resolves the Authorization header for one call chain. Unlike the
// document-generation provider there is no Basic fallback; the eSign API only
// accepts bearer tokens.
func (c *Client) authHeader(ctx context.Context) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrAuthNotConfigured
	}
	return "Bearer " + token, nil
}

func applyAuth(h http.Header, authorization string) {
	h.Set("Authorization", authorization)
	h.Set("Accept", "application/json")
}
