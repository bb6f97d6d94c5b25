package esign

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

type noNetworkTransport struct{ t *testing.T }

func (tr noNetworkTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.t.Errorf("unexpected network call: %s %s", req.Method, req.URL)
	return nil, errors.New("network disabled")
}

func TestSendMockedWhenBaseMissing(t *testing.T) {
	c := &Client{cfg: Config{}, http: &http.Client{Transport: noNetworkTransport{t}}}

	res, err := c.Send(context.Background(), SendInput{Filename: "doc.pdf", SignerEmail: "a@b.co"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Mocked {
		t.Fatal("expected mocked result")
	}
	if !strings.Contains(res.Message, "not configured") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestSendMockedWhenAuthUnresolvable(t *testing.T) {
	c := &Client{
		cfg:  Config{BaseURL: "https://esign.example.com/api"},
		http: &http.Client{Transport: noNetworkTransport{t}},
	}

	res, err := c.Send(context.Background(), SendInput{Filename: "doc.pdf", SignerEmail: "a@b.co"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Mocked {
		t.Fatal("expected mocked result")
	}
	if res.AuthError == "" {
		t.Fatal("expected auth error detail")
	}
	payload, ok := res.Payload().(map[string]any)
	if !ok {
		t.Fatalf("payload type %T", res.Payload())
	}
	if payload["mocked"] != true || payload["error"] == "" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestSendCreateFromURLWinsFirst(t *testing.T) {
	var paths []string
	var createBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/folders/createfolder" {
			createBody, _ = io.ReadAll(r.Body)
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"folderId":"f-1"}`))
			return
		}
		t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
	res, err := c.Send(context.Background(), SendInput{
		Document:      []byte("%PDF-1.4"),
		Filename:      "offer.pdf",
		SignerName:    "Jane Q Doe",
		SignerEmail:   "jane@example.com",
		Subject:       "Please sign",
		PublicFileURL: "https://files.example.com/offer.pdf",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Mocked {
		t.Fatal("expected live result")
	}
	if len(paths) != 1 {
		t.Fatalf("expected a single call, got %v", paths)
	}
	if got := gjson.GetBytes(res.Raw, "folderId").String(); got != "f-1" {
		t.Fatalf("folderId = %q", got)
	}

	body := gjson.ParseBytes(createBody)
	if got := body.Get("inputType").String(); got != "url" {
		t.Errorf("inputType = %q", got)
	}
	if got := body.Get("fileUrls.0").String(); got != "https://files.example.com/offer.pdf" {
		t.Errorf("fileUrls = %q", got)
	}
	if got := body.Get("parties.0.firstName").String(); got != "Jane Q" {
		t.Errorf("firstName = %q", got)
	}
	if got := body.Get("parties.0.lastName").String(); got != "Doe" {
		t.Errorf("lastName = %q", got)
	}
	if got := body.Get("parties.0.permission").String(); got != "FILL_FIELDS_AND_SIGN" {
		t.Errorf("permission = %q", got)
	}
	if !body.Get("sendNow").Bool() || !body.Get("processTextTags").Bool() {
		t.Error("expected sendNow and processTextTags true")
	}
}

func TestSendDerivesPublicURLFromExternalBase(t *testing.T) {
	var fileURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fileURL = gjson.GetBytes(body, "fileUrls.0").String()
		w.Write([]byte(`{"folderId":"f-2"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AccessToken: "tok", ExternalBaseURL: "https://demo.example.com/"})
	_, err := c.Send(context.Background(), SendInput{
		Document:    []byte("%PDF-1.4"),
		Filename:    "a b.pdf",
		SignerName:  "Sam",
		SignerEmail: "sam@example.com",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fileURL != "https://demo.example.com/output/a%20b.pdf" {
		t.Fatalf("fileUrl = %q", fileURL)
	}
}

func TestSendFallsThroughToMultiStep(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/envelopes":
			body, _ := io.ReadAll(r.Body)
			if gjson.GetBytes(body, "status").String() == "sent" {
				// create+send rejected, forcing the multi-step path
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"status not allowed"}`))
				return
			}
			w.Write([]byte(`{"result":{"id":"env-9"}}`))
		case "/envelopes/env-9/documents":
			if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
				t.Errorf("Content-Type = %q", ct)
			}
			w.WriteHeader(http.StatusCreated)
		case "/envelopes/env-9/parties":
			w.WriteHeader(http.StatusOK)
		case "/envelopes/env-9/send":
			w.Write([]byte(`{"status":"sent","envelopeId":"env-9"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
	res, err := c.Send(context.Background(), SendInput{
		Document:    []byte("%PDF-1.4"),
		Filename:    "handbook.pdf",
		SignerName:  "Jane Doe",
		SignerEmail: "jane@example.com",
		Subject:     "Handbook",
		Message:     "Please review and sign.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Mocked {
		t.Fatal("expected live result")
	}
	if got := gjson.GetBytes(res.Raw, "envelopeId").String(); got != "env-9" {
		t.Fatalf("envelopeId = %q", got)
	}

	want := []string{
		"/envelopes",
		"/envelopes",
		"/envelopes/env-9/documents",
		"/envelopes/env-9/parties",
		"/envelopes/env-9/send",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestSendAggregatesAttemptsOnTotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
	_, err := c.Send(context.Background(), SendInput{
		Document:      []byte("%PDF-1.4"),
		Filename:      "doc.pdf",
		SignerName:    "Sam",
		SignerEmail:   "sam@example.com",
		PublicFileURL: "https://files.example.com/doc.pdf",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("error type %T", err)
	}
	if len(sendErr.Attempts) < 3 {
		t.Fatalf("attempts = %+v", sendErr.Attempts)
	}
	seen := map[string]bool{}
	for _, a := range sendErr.Attempts {
		seen[a.Step] = true
	}
	for _, step := range []string{"create-from-url", "create+send", "create"} {
		if !seen[step] {
			t.Errorf("missing attempt for step %q in %+v", step, sendErr.Attempts)
		}
	}
}

func TestSplitSignerName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane Q Doe", "Jane Q", "Doe"},
		{"Jane", "Jane", ""},
		{"", "Signer", ""},
		{"  ", "Signer", ""},
	}
	for _, c := range cases {
		first, last := splitSignerName(c.in)
		if first != c.first || last != c.last {
			t.Errorf("splitSignerName(%q) = %q/%q, want %q/%q", c.in, first, last, c.first, c.last)
		}
	}
}

func TestEnvelopeIDFrom(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"id":"a"}`, "a"},
		{`{"envelopeId":"b"}`, "b"},
		{`{"EnvelopeId":"c"}`, "c"},
		{`{"result":{"id":"d"}}`, "d"},
		{`{"other":"x"}`, ""},
	}
	for _, c := range cases {
		if got := envelopeIDFrom(json.RawMessage(c.raw)); got != c.want {
			t.Errorf("envelopeIDFrom(%s) = %q, want %q", c.raw, got, c.want)
		}
	}
}
