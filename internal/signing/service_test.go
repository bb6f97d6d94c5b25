package signing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/employees"
	"onboarding-backend/internal/esign"
	"onboarding-backend/internal/filebin"
	"onboarding-backend/internal/generation"
	"onboarding-backend/internal/shared/storage/object/local"
	"onboarding-backend/internal/templates"
)

func newGenService(t *testing.T, outDir string) *generation.Service {
	t.Helper()
	return generation.NewService(
		docgen.New(docgen.Config{}),
		templates.NewStore(t.TempDir()),
		employees.NewStore(t.TempDir()),
		local.New(outDir),
		generation.NewMemoryRepo(),
	)
}

func noUploadServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected filebin call: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendMockedModeSkipsUpload(t *testing.T) {
	outDir := t.TempDir()
	pdfName := "2026-08-30T12-00-00-000Z_handbook-ack.pdf"
	if err := os.WriteFile(filepath.Join(outDir, pdfName), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(
		esign.New(esign.Config{}),
		filebin.New(filebin.Config{BaseURL: noUploadServer(t).URL}),
		newGenService(t, outDir),
		employees.NewStore(t.TempDir()),
		"",
	)

	out, err := svc.Send(context.Background(), SendInput{StepKey: "handbook-ack", SignerEmail: "jane@example.com"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !out.Result.Mocked {
		t.Fatal("expected mocked result")
	}
	if out.Live || out.PublicFileURL != "" {
		t.Fatalf("out = %+v", out)
	}
}

func TestSendLiveUploadsToFilebin(t *testing.T) {
	outDir := t.TempDir()
	pdfName := "2026-08-30T12-00-00-000Z_handbook-ack.pdf"
	if err := os.WriteFile(filepath.Join(outDir, pdfName), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	var uploadedName string
	fbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadedName = filepath.Base(r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer fbSrv.Close()

	var sendFileURL string
	esSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/folders/createfolder" {
			body, _ := io.ReadAll(r.Body)
			if i := strings.Index(string(body), `"fileUrls":["`); i >= 0 {
				rest := string(body)[i+len(`"fileUrls":["`):]
				sendFileURL = rest[:strings.Index(rest, `"`)]
			}
			w.Write([]byte(`{"folderId":"f-1"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer esSrv.Close()

	svc := NewService(
		esign.New(esign.Config{BaseURL: esSrv.URL, AccessToken: "tok"}),
		filebin.New(filebin.Config{BaseURL: fbSrv.URL, Bin: "b"}),
		newGenService(t, outDir),
		employees.NewStore(t.TempDir()),
		"",
	)

	out, err := svc.Send(context.Background(), SendInput{StepKey: "handbook-ack", SignerEmail: "jane@example.com"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.Result.Mocked {
		t.Fatal("expected live result")
	}
	if uploadedName != pdfName {
		t.Errorf("uploaded = %q", uploadedName)
	}
	if out.PublicFileURL == "" || sendFileURL != out.PublicFileURL {
		t.Errorf("publicFileUrl = %q, provider saw %q", out.PublicFileURL, sendFileURL)
	}
}

func TestSendFileResolutionOrder(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "from-url_handbook-ack.pdf"), []byte("url-pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	explicit := filepath.Join(t.TempDir(), "explicit.pdf")
	if err := os.WriteFile(explicit, []byte("explicit-pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(
		esign.New(esign.Config{}),
		filebin.New(filebin.Config{}),
		newGenService(t, outDir),
		employees.NewStore(t.TempDir()),
		"demo@example.com",
	)
	ctx := context.Background()

	// filePath wins over fileUrl and stepKey.
	out, err := svc.Send(ctx, SendInput{FilePath: explicit, FileURL: "/output/from-url_handbook-ack.pdf", StepKey: "handbook-ack"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !out.Result.Mocked {
		t.Fatal("expected mocked")
	}

	// fileUrl maps through /output.
	if _, err := svc.Send(ctx, SendInput{FileURL: "/output/from-url_handbook-ack.pdf"}); err != nil {
		t.Fatalf("Send via fileUrl: %v", err)
	}

	// Nothing resolvable.
	if _, err := svc.Send(ctx, SendInput{StepKey: "never-generated"}); !errors.Is(err, ErrPDFNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Send(ctx, SendInput{}); !errors.Is(err, ErrPDFNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendResolvesSignerFromEmployee(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "x_handbook-ack.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	empDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(empDir, "jane_doe.json"), []byte(`{"employeeName":"Jane Doe","employeeEmail":"jane@example.com"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(
		esign.New(esign.Config{}),
		filebin.New(filebin.Config{}),
		newGenService(t, outDir),
		employees.NewStore(empDir),
		"",
	)

	if _, err := svc.Send(context.Background(), SendInput{StepKey: "handbook-ack", EmployeeKey: "jane_doe"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// Without an email anywhere the send is rejected.
	if _, err := svc.Send(context.Background(), SendInput{StepKey: "handbook-ack", EmployeeKey: "missing"}); !errors.Is(err, ErrMissingSigner) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendDemoOverrideEmailWins(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "x_handbook-ack.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	empDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(empDir, "jane_doe.json"), []byte(`{"employeeName":"Jane Doe","employeeEmail":"jane@example.com"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(
		esign.New(esign.Config{}),
		filebin.New(filebin.Config{}),
		newGenService(t, outDir),
		employees.NewStore(empDir),
		"override@example.com",
	)

	name, email, err := svc.resolveSigner(SendInput{EmployeeKey: "jane_doe"})
	if err != nil {
		t.Fatalf("resolveSigner: %v", err)
	}
	if name != "Jane Doe" || email != "override@example.com" {
		t.Fatalf("signer = %q <%s>", name, email)
	}

	// Explicit email still beats the override.
	_, email, err = svc.resolveSigner(SendInput{SignerEmail: "direct@example.com"})
	if err != nil {
		t.Fatalf("resolveSigner: %v", err)
	}
	if email != "direct@example.com" {
		t.Fatalf("email = %q", email)
	}
}

func TestOutputBasename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/output/a.pdf", "a.pdf"},
		{"http://localhost:8080/output/a%20b.pdf", "a b.pdf"},
		{"/elsewhere/a.pdf", ""},
		{"not a url at all\x7f", ""},
	}
	for _, c := range cases {
		if got := outputBasename(c.in); got != c.want {
			t.Errorf("outputBasename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
