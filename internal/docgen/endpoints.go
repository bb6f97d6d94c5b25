package docgen

import "regexp"

// Well-known Foxit fusion endpoints used when no override is configured.
const (
	defaultGenerateURL = "https://na1.fusion.foxit.com/document-generation/api/GenerateDocumentBase64"
	defaultAnalyzeURL  = "https://na1.fusion.foxit.com/document-generation/api/AnalyzeDocumentBase64"
)

var base64EndpointRe = regexp.MustCompile(`(?i)analyz(e)?(document|template)base64`)

// generateEndpoints returns candidate generate URLs in the order they are
// tried. A configured override wins outright over the default.
func (c *Client) generateEndpoints() []string {
	if c.cfg.GenerateURL != "" {
		return []string{c.cfg.GenerateURL}
	}
	return []string{defaultGenerateURL}
}

// analyzeEndpoints returns candidate analyze URLs in the order they are tried.
func (c *Client) analyzeEndpoints() []string {
	if c.cfg.AnalyzeURL != "" {
		return []string{c.cfg.AnalyzeURL}
	}
	return []string{defaultAnalyzeURL}
}

// isBase64Endpoint reports whether an analyze URL expects a JSON body with a
// base64FileString instead of a multipart upload.
func isBase64Endpoint(url string) bool {
	return base64EndpointRe.MatchString(url)
}
