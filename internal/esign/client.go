package esign

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
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"onboarding-backend/internal/shared/telemetry"
)

// Client calls the Foxit eSign API. Send variants are an ordered chain of
// named strategies; the first to succeed terminates the chain and failures
// are aggregated into the attempt log.
type Client struct {
	cfg  Config
	http *http.Client
}

// New constructs an eSign client.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

// Configured reports whether live sends are possible.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// SendInput describes one signing request.
type SendInput struct {
	Document      []byte
	Filename      string
	SignerName    string
	SignerEmail   string
	Subject       string
	Message       string
	PublicFileURL string
}

// SendResult is the terminal outcome of a send: either a mocked success
// (provider absent or auth unresolvable) or the provider's raw response.
type SendResult struct {
	Mocked    bool
	Message   string
	AuthError string
	Raw       json.RawMessage
}

// Payload renders the result for an HTTP response body.
func (r SendResult) Payload() any {
	if !r.Mocked {
		return r.Raw
	}
	out := map[string]any{"mocked": true, "message": r.Message}
	if r.AuthError != "" {
		out["error"] = r.AuthError
	}
	return out
}

// Attempt records the outcome of one send-strategy step.
type Attempt struct {
	Step   string `json:"step,omitempty"`
	URL    string `json:"url,omitempty"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Err    string `json:"error,omitempty"`
}

// SendError reports that every strategy failed.
type SendError struct {
	Attempts []Attempt
}

func (e *SendError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		status := "ERR"
		if a.Status != 0 {
			status = fmt.Sprintf("%d", a.Status)
		}
		s := fmt.Sprintf("%s@%s -> %s", a.Step, a.URL, status)
		if a.Err != "" {
			s += " " + a.Err
		}
		parts = append(parts, s)
	}
	return "eSign send failed; attempts: " + strings.Join(parts, " | ")
}

// Send routes a document to the signer. Unconfigured providers yield a mocked
// result and never touch the network.
func (c *Client) Send(ctx context.Context, in SendInput) (SendResult, error) {
	if c.cfg.Base() == "" {
		return SendResult{
			Mocked:  true,
			Message: "Foxit eSign is not configured (FOXIT_ESIGN_BASE_URL not set); no email was sent. This is a demo stub.",
		}, nil
	}

	authz, err := c.authHeader(ctx)
	if err != nil {
		return SendResult{
			Mocked:    true,
			Message:   "Foxit eSign auth is not configured; no email was sent. This is a demo stub.",
			AuthError: err.Error(),
		}, nil
	}

	strategies := []struct {
		name string
		run  func(ctx context.Context, in SendInput, authz string) (json.RawMessage, []Attempt)
	}{
		{"create-from-url", c.createFromURL},
		{"create-and-send", c.createAndSend},
		{"multi-step", c.multiStep},
	}

	var attempts []Attempt
	for _, s := range strategies {
		raw, tried := s.run(ctx, in, authz)
		attempts = append(attempts, tried...)
		if raw != nil {
			telemetry.Info("esign.send.success", map[string]any{"strategy": s.name})
			return SendResult{Raw: raw}, nil
		}
	}

	telemetry.Error("esign.send.failed", map[string]any{"attempts": attempts})
	return SendResult{}, &SendError{Attempts: attempts}
}

// createFromURL tries the single-call create-envelope-from-URL endpoint. It
// is skipped entirely when no public file URL is available or derivable.
func (c *Client) createFromURL(ctx context.Context, in SendInput, authz string) (json.RawMessage, []Attempt) {
	fileURL := in.PublicFileURL
	if fileURL == "" && c.cfg.ExternalBaseURL != "" {
		fileURL = strings.TrimRight(c.cfg.ExternalBaseURL, "/") + "/output/" + url.PathEscape(in.Filename)
	}
	if fileURL == "" {
		return nil, nil
	}

	endpoint := c.cfg.Base() + "/folders/createfolder"
	first, last := splitSignerName(in.SignerName)
	folderName := in.Subject
	if folderName == "" {
		folderName = in.Filename
	}
	payload := map[string]any{
		"folderName": folderName,
		"inputType":  "url",
		"fileUrls":   []string{fileURL},
		"fileNames":  []string{in.Filename},
		"parties": []map[string]any{{
			"firstName":       first,
			"lastName":        last,
			"emailId":         in.SignerEmail,
			"permission":      "FILL_FIELDS_AND_SIGN",
			"sequence":        1,
			"allowNameChange": "false",
		}},
		// Process eSign text tags like ${s:1:Signature_Field_Name} so
		// templates carrying those markers get real signature fields.
		"processTextTags":                           true,
		"processAcroFields":                         false,
		"sendNow":                                   true,
		"createEmbeddedSigningSession":              false,
		"createEmbeddedSigningSessionForAllParties": false,
		"signInSequence":                            false,
	}

	telemetry.Info("esign.create-from-url", map[string]any{"url": endpoint, "fileUrl": fileURL, "signerEmail": in.SignerEmail})
	status, body, err := c.postJSON(ctx, endpoint, payload, authz)
	if err != nil {
		return nil, []Attempt{{Step: "create-from-url", URL: endpoint, Err: err.Error()}}
	}
	if status >= 200 && status <= 299 {
		raw := normalizeJSON(body)
		telemetry.Info("esign.create-from-url.success", map[string]any{"folderId": folderID(raw)})
		return raw, nil
	}
	return nil, []Attempt{{Step: "create-from-url", URL: endpoint, Status: status, Body: truncate(body)}}
}

// createAndSend tries the single-call envelope create+send with the document
// embedded as base64.
func (c *Client) createAndSend(ctx context.Context, in SendInput, authz string) (json.RawMessage, []Attempt) {
	endpoint := c.cfg.Base() + "/envelopes"
	payload := map[string]any{
		"name":         in.Subject,
		"emailSubject": in.Subject,
		"emailMessage": in.Message,
		"status":       "sent",
		"parties":      []map[string]any{{"role": "signer", "name": in.SignerName, "email": in.SignerEmail}},
		"documents": []map[string]any{{
			"fileName":   in.Filename,
			"fileBase64": base64.StdEncoding.EncodeToString(in.Document),
			"fileType":   "pdf",
		}},
	}

	telemetry.Info("esign.create-and-send", map[string]any{"url": endpoint, "signerEmail": in.SignerEmail})
	status, body, err := c.postJSON(ctx, endpoint, payload, authz)
	if err != nil {
		return nil, []Attempt{{Step: "create+send", URL: endpoint, Err: err.Error()}}
	}
	if status >= 200 && status <= 299 {
		return normalizeJSON(body), nil
	}
	return nil, []Attempt{{Step: "create+send", URL: endpoint, Status: status, Body: truncate(body)}}
}

// multiStep runs the long way around: create an envelope, upload the
// document (multipart first, JSON-base64 fallback, across both known upload
// paths), add parties, then send.
func (c *Client) multiStep(ctx context.Context, in SendInput, authz string) (json.RawMessage, []Attempt) {
	var attempts []Attempt
	base := c.cfg.Base()

	createURL := base + "/envelopes"
	telemetry.Info("esign.multi-step.create", map[string]any{"url": createURL, "subject": in.Subject})
	status, body, err := c.postJSON(ctx, createURL, map[string]any{"name": in.Subject, "status": "created"}, authz)
	if err != nil {
		return nil, append(attempts, Attempt{Step: "create", URL: createURL, Err: err.Error()})
	}
	if status < 200 || status > 299 {
		return nil, append(attempts, Attempt{Step: "create", URL: createURL, Status: status, Body: truncate(body)})
	}
	envelopeID := envelopeIDFrom(normalizeJSON(body))
	if envelopeID == "" {
		return nil, append(attempts, Attempt{Step: "create", URL: createURL, Err: "missing envelopeId"})
	}

	uploaded := false
	for _, uploadURL := range []string{
		base + "/envelopes/" + envelopeID + "/documents",
		base + "/envelopes/" + envelopeID + "/files",
	} {
		status, body, err := c.postPDFMultipart(ctx, uploadURL, in.Filename, in.Document, authz)
		if err != nil {
			attempts = append(attempts, Attempt{Step: "upload(multipart)", URL: uploadURL, Err: err.Error()})
		} else if status >= 200 && status <= 299 {
			uploaded = true
			break
		} else {
			attempts = append(attempts, Attempt{Step: "upload(multipart)", URL: uploadURL, Status: status, Body: truncate(body)})
		}

		status, body, err = c.postJSON(ctx, uploadURL, map[string]any{
			"fileName":   in.Filename,
			"fileBase64": base64.StdEncoding.EncodeToString(in.Document),
			"fileType":   "pdf",
		}, authz)
		if err != nil {
			attempts = append(attempts, Attempt{Step: "upload(json)", URL: uploadURL, Err: err.Error()})
			continue
		}
		if status >= 200 && status <= 299 {
			uploaded = true
			break
		}
		attempts = append(attempts, Attempt{Step: "upload(json)", URL: uploadURL, Status: status, Body: truncate(body)})
	}
	if !uploaded {
		return nil, append(attempts, Attempt{Step: "multi-step", Err: "upload failed", URL: createURL})
	}

	partiesURL := base + "/envelopes/" + envelopeID + "/parties"
	telemetry.Info("esign.multi-step.parties", map[string]any{"url": partiesURL, "signerEmail": in.SignerEmail})
	status, body, err = c.postJSON(ctx, partiesURL, map[string]any{
		"parties": []map[string]any{{"role": "signer", "name": in.SignerName, "email": in.SignerEmail}},
	}, authz)
	if err != nil {
		return nil, append(attempts, Attempt{Step: "parties", URL: partiesURL, Err: err.Error()})
	}
	if status < 200 || status > 299 {
		return nil, append(attempts, Attempt{Step: "parties", URL: partiesURL, Status: status, Body: truncate(body)})
	}

	sendURL := base + "/envelopes/" + envelopeID + "/send"
	telemetry.Info("esign.multi-step.send", map[string]any{"url": sendURL, "envelopeId": envelopeID})
	status, body, err = c.postJSON(ctx, sendURL, map[string]any{
		"emailSubject": in.Subject,
		"emailMessage": in.Message,
	}, authz)
	if err != nil {
		return nil, append(attempts, Attempt{Step: "send", URL: sendURL, Err: err.Error()})
	}
	if status >= 200 && status <= 299 {
		return normalizeJSON(body), nil
	}
	return nil, append(attempts, Attempt{Step: "send", URL: sendURL, Status: status, Body: truncate(body)})
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, authz string) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	applyAuth(req.Header, authz)
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

func (c *Client) postPDFMultipart(ctx context.Context, endpoint, filename string, data []byte, authz string) (int, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return 0, nil, err
	}
	applyAuth(req.Header, authz)
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

// splitSignerName splits a display name into first/last parts the provider
// expects. Single-word names become the first name; an empty name falls back
// to "Signer".
func splitSignerName(name string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "Signer", ""
	case 1:
		return fields[0], ""
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

// envelopeIDFrom pulls an envelope identifier out of the known response
// shapes.
func envelopeIDFrom(raw json.RawMessage) string {
	for _, path := range []string{"id", "envelopeId", "EnvelopeId", "result.id"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func folderID(raw json.RawMessage) string {
	for _, path := range []string{"folderId", "id", "result.id"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func truncate(body []byte) string {
	s := string(body)
	if len(s) > 300 {
		return s[:300]
	}
	return s
}

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
