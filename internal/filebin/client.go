package filebin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"onboarding-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://filebin.net"

// Config controls the public-file relay. Bin pins every upload to one bin;
// when empty each upload gets a fresh random bin.
type Config struct {
	BaseURL string
	Bin     string
}

// Client uploads generated PDFs to a filebin service so external providers
// can fetch them over a public URL.
type Client struct {
	cfg Config
	// manual never follows redirects; filebin answers a fresh upload with a
	// 30x to the backing store and we want that Location verbatim.
	manual *http.Client
	http   *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		manual: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) base() string {
	if c.cfg.BaseURL == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

// UploadError carries the upstream status and a truncated body.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("filebin upload failed: status %d: %s", e.Status, e.Body)
}

// PublishResult describes where a published file ended up.
type PublishResult struct {
	URL         string `json:"url"`
	FilebinURL  string `json:"filebinUrl"`
	ViaRedirect bool   `json:"viaRedirect"`
	Status      int    `json:"status"`
}

// Publish uploads the document and resolves the bin URL to a direct one when
// the service answers with a redirect.
func (c *Client) Publish(ctx context.Context, filename string, data []byte) (PublishResult, error) {
	if filename == "" {
		filename = "document.pdf"
	}
	bin := c.cfg.Bin
	if bin == "" {
		bin = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	binURL := c.base() + "/" + url.PathEscape(bin) + "/" + url.PathEscape(filename)

	telemetry.Info("filebin.upload", map[string]any{"url": binURL, "bin": bin, "filename": filename})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, binURL, bytes.NewReader(data))
	if err != nil {
		return PublishResult{}, err
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("cid", "foxit-onboarding-demo")

	resp, err := c.http.Do(req)
	if err != nil {
		return PublishResult{}, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		trimmed := string(body)
		if len(trimmed) > 300 {
			trimmed = trimmed[:300]
		}
		telemetry.Error("filebin.upload.failed", map[string]any{"status": resp.StatusCode, "body": trimmed})
		return PublishResult{}, &UploadError{Status: resp.StatusCode, Body: trimmed}
	}

	direct, viaRedirect := c.resolveDirectURL(ctx, binURL)
	telemetry.Info("filebin.upload.success", map[string]any{
		"filebinUrl":  binURL,
		"directUrl":   direct,
		"viaRedirect": viaRedirect,
		"status":      resp.StatusCode,
	})
	return PublishResult{URL: direct, FilebinURL: binURL, ViaRedirect: viaRedirect, Status: resp.StatusCode}, nil
}

// resolveDirectURL follows at most one redirect hop by hand and returns the
// Location when the bin URL answers with a 30x. Signing providers fetch the
// file server side and some refuse to chase redirects themselves.
func (c *Client) resolveDirectURL(ctx context.Context, binURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, binURL, nil)
	if err != nil {
		return binURL, false
	}
	resp, err := c.manual.Do(req)
	if err != nil {
		telemetry.Error("filebin.resolve.error", map[string]any{"url": binURL, "error": err.Error()})
		return binURL, false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode <= 399 {
		if loc := resp.Header.Get("Location"); loc != "" {
			telemetry.Info("filebin.resolve", map[string]any{"from": binURL, "to": loc, "status": resp.StatusCode})
			return loc, true
		}
	}
	telemetry.Info("filebin.resolve.no-redirect", map[string]any{"url": binURL, "status": resp.StatusCode})
	return binURL, false
}

// ProbeResult reports how a URL responds to manual-redirect HEAD and GET
// requests, for debugging redirect-shy providers.
type ProbeResult struct {
	URL         string            `json:"url"`
	HeadStatus  int               `json:"headStatus,omitempty"`
	HeadHeaders map[string]string `json:"headHeaders,omitempty"`
	HeadError   string            `json:"headError,omitempty"`
	GetStatus   int               `json:"getStatus,omitempty"`
	GetHeaders  map[string]string `json:"getHeaders,omitempty"`
	GetError    string            `json:"getError,omitempty"`
	ResolvedURL string            `json:"resolvedUrl"`
	SawRedirect bool              `json:"sawRedirect"`
}

// Probe exercises a URL with both verbs without following redirects.
func (c *Client) Probe(ctx context.Context, target string) ProbeResult {
	out := ProbeResult{URL: target}

	if status, headers, err := c.manualRequest(ctx, http.MethodHead, target); err != nil {
		out.HeadError = err.Error()
	} else {
		out.HeadStatus = status
		out.HeadHeaders = headers
	}

	if status, headers, err := c.manualRequest(ctx, http.MethodGet, target); err != nil {
		out.GetError = err.Error()
	} else {
		out.GetStatus = status
		out.GetHeaders = headers
	}

	out.ResolvedURL, out.SawRedirect = c.resolveDirectURL(ctx, target)
	return out
}

func (c *Client) manualRequest(ctx context.Context, method, target string) (int, map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := c.manual.Do(req)
	if err != nil {
		return 0, nil, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return resp.StatusCode, headers, nil
}
