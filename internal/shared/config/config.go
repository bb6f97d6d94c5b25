package config

import (
	"os"
	"strings"
)

// Foxit holds the document-generation provider configuration.
type Foxit struct {
	AccessToken  string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	GenerateURL  string
	AnalyzeURL   string
}

// ESign holds the e-signature provider configuration. Credential fields left
// empty fall back to the document-generation credentials at load time.
type ESign struct {
	BaseURL         string
	AccessToken     string
	TokenURL        string
	ClientID        string
	ClientSecret    string
	Scope           string
	DemoSignerEmail string
}

// Config holds application configuration. It is resolved once at startup and
// passed explicitly to the components that need it; nothing reads the
// environment after Load returns.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	OutputDir       string
	TemplatesDir    string
	EmployeeDataDir string
	PublicDir       string
	ObjectStoreType string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	DatabaseURL     string
	ExternalBaseURL string
	FilebinBaseURL  string
	FilebinBin      string
	Foxit           Foxit
	ESign           ESign
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	foxit := Foxit{
		AccessToken:  getenv("FOXIT_ACCESS_TOKEN", ""),
		TokenURL:     getenv("FOXIT_TOKEN_URL", ""),
		ClientID:     firstNonEmpty(getenv("FOXIT_CLIENT_ID", ""), getenv("FOXIT_CLOUD_API_CLIENT_ID", "")),
		ClientSecret: firstNonEmpty(getenv("FOXIT_CLIENT_SECRET", ""), getenv("FOXIT_CLOUD_API_CLIENT_SECRET", "")),
		Scope:        getenv("FOXIT_SCOPE", ""),
		GenerateURL:  getenv("FOXIT_DOCGEN_GENERATE_URL", ""),
		AnalyzeURL:   getenv("FOXIT_DOCGEN_ANALYZE_URL", ""),
	}

	// eSign-scoped credentials win; the general Foxit credentials fill gaps so
	// a single credential pair can drive both providers.
	esign := ESign{
		BaseURL:         strings.TrimRight(getenv("FOXIT_ESIGN_BASE_URL", ""), "/"),
		AccessToken:     getenv("FOXIT_ESIGN_ACCESS_TOKEN", ""),
		TokenURL:        firstNonEmpty(getenv("FOXIT_ESIGN_TOKEN_URL", ""), foxit.TokenURL),
		ClientID:        firstNonEmpty(getenv("FOXIT_ESIGN_CLIENT_ID", ""), foxit.ClientID),
		ClientSecret:    firstNonEmpty(getenv("FOXIT_ESIGN_CLIENT_SECRET", ""), foxit.ClientSecret),
		Scope:           firstNonEmpty(getenv("FOXIT_ESIGN_SCOPE", ""), foxit.Scope),
		DemoSignerEmail: getenv("FOXIT_ESIGN_DEMO_SIGNER_EMAIL", ""),
	}

	return Config{
		Port:            getenv("PORT", "3000"),
		Env:             normalizeEnv(getenv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getenv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		OutputDir:       getenv("OUTPUT_DIR", "./output"),
		TemplatesDir:    getenv("TEMPLATES_DIR", "./templates"),
		EmployeeDataDir: getenv("EMPLOYEE_DATA_DIR", "./employee_data"),
		PublicDir:       getenv("PUBLIC_DIR", "./public"),
		ObjectStoreType: normalizeStoreType(getenv("OBJECT_STORE", "local")),
		AWSRegion:       getenv("AWS_REGION", ""),
		S3Bucket:        getenv("S3_BUCKET", ""),
		S3Prefix:        getenv("S3_PREFIX", ""),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		ExternalBaseURL: getenv("EXTERNAL_BASE_URL", ""),
		FilebinBaseURL:  getenv("FILEBIN_BASE_URL", "https://filebin.net"),
		FilebinBin:      getenv("FILEBIN_BIN", ""),
		Foxit:           foxit,
		ESign:           esign,
	}
}

// AuthMode reports which outbound auth mode generate/analyze calls will use.
func (f Foxit) AuthMode() string {
	if f.AccessToken != "" || f.TokenURL != "" {
		return "bearer"
	}
	if f.ClientID != "" && f.ClientSecret != "" {
		return "basic"
	}
	return "none"
}

func getenv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
