package analysis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/templates"
)

func newRouter(t *testing.T, providerURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tplDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tplDir, "Employee_Handbook_Acknowledgment.docx"), []byte("docx"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	h := NewHandler(
		docgen.New(docgen.Config{AccessToken: "tok", AnalyzeURL: providerURL}),
		templates.NewStore(tplDir),
	)
	h.RegisterRoutes(router.Group("/api"))
	return router
}

func TestAnalyzeMergesProviderMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fields":["employeeName"],"count":1}`))
	}))
	defer srv.Close()

	router := newRouter(t, srv.URL+"/analyzeDocumentBase64")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"stepKey":"handbook-ack"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["provider"] != "foxit" {
		t.Errorf("provider = %v", body["provider"])
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestAnalyzeValidation(t *testing.T) {
	router := newRouter(t, "http://127.0.0.1:0/analyze")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"stepKey":"personal-info"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"stepKey":"it-security-policy"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAnalyzeProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"broken"}`))
	}))
	defer srv.Close()

	router := newRouter(t, srv.URL+"/analyzeDocumentBase64")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"stepKey":"handbook-ack"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var body struct {
		Error    string           `json:"error"`
		Attempts []docgen.Attempt `json:"attempts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != "foxit-analyze-failed" || len(body.Attempts) == 0 {
		t.Fatalf("body = %+v", body)
	}
}
