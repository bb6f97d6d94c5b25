package docgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"onboarding-backend/internal/shared/telemetry"
)

const templateContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Client calls the Foxit document-generation API. Candidate endpoints are
// tried strictly in order; the first success wins and per-candidate failures
// are aggregated rather than surfaced immediately.
type Client struct {
	cfg  Config
	http *http.Client
}

// New constructs a document-generation client. Provider calls carry no
// client-side timeout; a hanging call blocks only its own request.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

// AuthMode reports which auth mode outbound calls will use.
func (c *Client) AuthMode() string {
	if c.cfg.AccessToken != "" || c.cfg.TokenURL != "" {
		return "bearer"
	}
	if c.cfg.ClientID != "" && c.cfg.ClientSecret != "" {
		return "basic"
	}
	return "none"
}

// GenerateInput carries a template and its fill values.
type GenerateInput struct {
	Template        []byte
	DocumentValues  map[string]string
	OutputFormat    string
	CurrencyCulture string
}

// GenerateResult is a successful provider response. Artifact is "" when the
// provider answered 2xx but no usable payload could be extracted.
type GenerateResult struct {
	Artifact string
	Raw      json.RawMessage
}

// Generate fills a template by POSTing it to each candidate endpoint in turn.
func (c *Client) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	auth, err := c.resolveAuth(ctx)
	if err != nil {
		return GenerateResult{}, err
	}

	outputFormat := in.OutputFormat
	if outputFormat == "" {
		outputFormat = "pdf"
	}
	currencyCulture := in.CurrencyCulture
	if currencyCulture == "" {
		currencyCulture = "en-US"
	}
	values := in.DocumentValues
	if values == nil {
		values = map[string]string{}
	}

	payload, err := json.Marshal(map[string]any{
		"outputFormat":     outputFormat,
		"currencyCulture":  currencyCulture,
		"documentValues":   values,
		"base64FileString": base64.StdEncoding.EncodeToString(in.Template),
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("marshal generate payload: %w", err)
	}

	var attempts []Attempt
	for _, url := range c.generateEndpoints() {
		telemetry.Info("docgen.generate.attempt", map[string]any{"url": url})

		status, body, err := c.postJSON(ctx, url, payload, auth)
		if err != nil {
			attempts = append(attempts, Attempt{URL: url, Err: err.Error()})
			continue
		}
		if status < 200 || status > 299 {
			telemetry.Error("docgen.generate.rejected", map[string]any{
				"url":    url,
				"status": status,
				"body":   redactRaw(body),
			})
			attempts = append(attempts, Attempt{URL: url, Status: status, Body: TruncateBody(string(body))})
			continue
		}

		raw := normalizeJSON(body)
		telemetry.Info("docgen.generate.result", map[string]any{"url": url, "body": redactRaw(raw)})
		return GenerateResult{Artifact: ExtractArtifact(raw), Raw: raw}, nil
	}

	return GenerateResult{}, &AttemptsError{Op: "foxit generate", Attempts: attempts}
}

// Analyze submits a template for field analysis. Base64-style endpoints get a
// single JSON POST; multipart-style endpoints are tried with field name
// "file" and once more with "template" on a 400/415 rejection.
func (c *Client) Analyze(ctx context.Context, template []byte, filename string) (json.RawMessage, error) {
	auth, err := c.resolveAuth(ctx)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		filename = "template.docx"
	}

	var attempts []Attempt
	for _, url := range c.analyzeEndpoints() {
		if isBase64Endpoint(url) {
			payload, err := json.Marshal(map[string]string{
				"base64FileString": base64.StdEncoding.EncodeToString(template),
			})
			if err != nil {
				return nil, fmt.Errorf("marshal analyze payload: %w", err)
			}
			telemetry.Info("docgen.analyze.attempt", map[string]any{"url": url, "mode": "base64FileString"})

			status, body, err := c.postJSON(ctx, url, payload, auth)
			if err != nil {
				attempts = append(attempts, Attempt{URL: url, Err: err.Error()})
				continue
			}
			if status >= 200 && status <= 299 {
				return normalizeJSON(body), nil
			}
			attempts = append(attempts, Attempt{URL: url + " (base64FileString)", Status: status, Body: TruncateBody(string(body))})
			continue
		}

		telemetry.Info("docgen.analyze.attempt", map[string]any{"url": url, "field": "file"})
		status, body, err := c.postMultipart(ctx, url, "file", filename, template, auth)
		if err != nil {
			attempts = append(attempts, Attempt{URL: url, Err: err.Error()})
			continue
		}
		if status >= 200 && status <= 299 {
			return normalizeJSON(body), nil
		}
		if status != http.StatusBadRequest && status != http.StatusUnsupportedMediaType {
			attempts = append(attempts, Attempt{URL: url, Status: status, Body: TruncateBody(string(body))})
			continue
		}

		// Some endpoint variants name the upload field "template".
		telemetry.Info("docgen.analyze.attempt", map[string]any{"url": url, "field": "template"})
		status, body, err = c.postMultipart(ctx, url, "template", filename, template, auth)
		if err != nil {
			attempts = append(attempts, Attempt{URL: url, Err: err.Error()})
			continue
		}
		if status >= 200 && status <= 299 {
			return normalizeJSON(body), nil
		}
		attempts = append(attempts, Attempt{URL: url, Status: status, Body: TruncateBody(string(body))})
	}

	return nil, &AttemptsError{Op: "foxit analyze", Attempts: attempts}
}

func (c *Client) postJSON(ctx context.Context, url string, payload []byte, auth AuthContext) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	auth.Apply(req.Header)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) postMultipart(ctx context.Context, url, field, filename string, data []byte, auth AuthContext) (int, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", templateContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return 0, nil, err
	}
	if _, err := part.Write(data); err != nil {
		return 0, nil, err
	}
	if err := writer.Close(); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return 0, nil, err
	}
	auth.Apply(req.Header)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// normalizeJSON guarantees callers a JSON object: non-JSON provider bodies
// are wrapped as {"raw": <text>}.
func normalizeJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(body)})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return wrapped
}
