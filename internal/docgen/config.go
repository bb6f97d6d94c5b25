package docgen

// Config is the document-generation provider configuration, resolved once at
// startup and injected. GenerateURL/AnalyzeURL override the built-in endpoint
// defaults when set.
type Config struct {
	AccessToken  string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	GenerateURL  string
	AnalyzeURL   string
}
