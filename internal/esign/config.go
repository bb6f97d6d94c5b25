package esign

import "strings"

// Config is the e-signature provider configuration. Credentials may be
// inherited from the document-generation provider at load time.
// ExternalBaseURL, when set, lets the send flow derive a public file URL for
// documents served from this app's own /output path.
type Config struct {
	BaseURL         string
	AccessToken     string
	TokenURL        string
	ClientID        string
	ClientSecret    string
	Scope           string
	ExternalBaseURL string
}

// Base returns the provider base URL without a trailing slash.
func (c Config) Base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// Configured reports whether a live send is possible: a base endpoint plus
// either a direct token or a complete client-credentials setup. Anything less
// short-circuits to a mocked result so the demo stays usable offline.
func (c Config) Configured() bool {
	if c.Base() == "" {
		return false
	}
	if c.AccessToken != "" {
		return true
	}
	return c.TokenURL != "" && c.ClientID != "" && c.ClientSecret != ""
}
