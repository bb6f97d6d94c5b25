package esign

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Health is a credential and connectivity snapshot for the eSign provider.
// Secrets never appear in it unmasked.
type Health struct {
	OK            bool      `json:"ok"`
	BaseURL       string    `json:"baseUrl,omitempty"`
	TokenAcquired bool      `json:"tokenAcquired"`
	TokenPreview  any       `json:"tokenPreview,omitempty"`
	Attempts      []Attempt `json:"attempts"`
	Env           HealthEnv `json:"env"`
}

// HealthEnv summarizes which credential knobs are set, with the client id
// masked.
type HealthEnv struct {
	BaseURL             string `json:"baseUrl,omitempty"`
	DirectAccessToken   bool   `json:"directAccessToken"`
	TokenURLConfigured  bool   `json:"tokenUrlConfigured"`
	ClientIDPresent     bool   `json:"clientIdPresent"`
	ClientSecretPresent bool   `json:"clientSecretPresent"`
	ClientIDMasked      string `json:"clientIdMasked,omitempty"`
	Scope               string `json:"scope,omitempty"`
}

var apiSuffixRe = regexp.MustCompile(`(?i)/api$`)

// Health checks token acquisition and API reachability. When no token URL is
// configured it probes the common OAuth endpoints derived from the base URL
// before giving up.
func (c *Client) Health(ctx context.Context) Health {
	base := c.cfg.Base()
	h := Health{
		BaseURL:  base,
		Attempts: []Attempt{},
		Env: HealthEnv{
			BaseURL:             base,
			DirectAccessToken:   c.cfg.AccessToken != "",
			TokenURLConfigured:  c.cfg.TokenURL != "",
			ClientIDPresent:     c.cfg.ClientID != "",
			ClientSecretPresent: c.cfg.ClientSecret != "",
			ClientIDMasked:      maskSecret(c.cfg.ClientID),
			Scope:               c.cfg.Scope,
		},
	}

	var token string
	switch {
	case c.cfg.AccessToken != "":
		token = c.cfg.AccessToken
	case c.cfg.TokenURL != "":
		t, err := c.accessToken(ctx)
		if err != nil {
			h.Attempts = append(h.Attempts, Attempt{Step: "token", Err: err.Error()})
		} else {
			token = t
		}
	case base != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != "":
		token = c.probeTokenEndpoints(ctx, base, &h.Attempts)
	}

	if token != "" {
		h.TokenAcquired = true
		h.TokenPreview = tokenPreview(token)
	}

	pingOK := false
	if base != "" && token != "" {
		for _, u := range []string{base + "/accounts/me", base + "/accounts", base + "/users/me"} {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				h.Attempts = append(h.Attempts, Attempt{URL: u, Err: err.Error()})
				continue
			}
			applyAuth(req.Header, "Bearer "+token)
			resp, err := c.http.Do(req)
			if err != nil {
				h.Attempts = append(h.Attempts, Attempt{URL: u, Err: err.Error()})
				continue
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			h.Attempts = append(h.Attempts, Attempt{URL: u, Status: resp.StatusCode})
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				pingOK = true
				break
			}
		}
	}

	h.OK = token != "" && (pingOK || len(h.Attempts) > 0)
	return h
}

// probeTokenEndpoints tries the usual OAuth token paths relative to the base
// URL and its origin (base with a trailing /api stripped).
func (c *Client) probeTokenEndpoints(ctx context.Context, base string, attempts *[]Attempt) string {
	origin := apiSuffixRe.ReplaceAllString(base, "")
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	if c.cfg.Scope != "" {
		form.Set("scope", c.cfg.Scope)
	}

	for _, u := range []string{
		origin + "/oauth2/token",
		origin + "/oauth/token",
		base + "/oauth2/token",
		base + "/oauth/token",
	} {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
		if err != nil {
			*attempts = append(*attempts, Attempt{Step: "token-candidate", URL: u, Err: err.Error()})
			continue
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := c.http.Do(req)
		if err != nil {
			*attempts = append(*attempts, Attempt{Step: "token-candidate", URL: u, Err: err.Error()})
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		*attempts = append(*attempts, Attempt{Step: "token-candidate", URL: u, Status: resp.StatusCode})
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if tok := gjson.GetBytes(body, "access_token").String(); tok != "" {
				return tok
			}
		}
	}
	return ""
}

// tokenPreview renders a safe glimpse of a token: decoded standard claims for
// a JWT, otherwise the first 12 characters.
func tokenPreview(token string) any {
	parts := strings.Split(token, ".")
	if len(parts) == 3 {
		if payload, err := base64.RawURLEncoding.DecodeString(parts[1]); err == nil {
			var claims struct {
				Iss   string `json:"iss,omitempty"`
				Sub   string `json:"sub,omitempty"`
				Aud   any    `json:"aud,omitempty"`
				Exp   int64  `json:"exp,omitempty"`
				Scope string `json:"scope,omitempty"`
			}
			if json.Unmarshal(payload, &claims) == nil {
				return claims
			}
		}
	}
	if len(token) > 12 {
		return token[:12] + "…"
	}
	return token
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 6 {
		return v[:1] + "…"
	}
	return v[:2] + "…" + v[len(v)-4:]
}
