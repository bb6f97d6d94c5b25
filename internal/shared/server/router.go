package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/analysis"
	"onboarding-backend/internal/employees"
	"onboarding-backend/internal/filebin"
	"onboarding-backend/internal/generation"
	"onboarding-backend/internal/shared/config"
	"onboarding-backend/internal/shared/server/middleware"
	"onboarding-backend/internal/shared/server/respond"
	"onboarding-backend/internal/shared/storage/object"
	"onboarding-backend/internal/signing"
	"onboarding-backend/internal/steps"
)

// Addr normalizes a port value into a listen address.
func Addr(port string) string {
	if port == "" {
		port = "3000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Deps carries the wired feature handlers plus what the router serves
// directly: artifacts from the output store and the static frontend.
type Deps struct {
	Steps      *steps.Handler
	Employees  *employees.Handler
	Generation *generation.Handler
	Signing    *signing.Handler
	Analysis   *analysis.Handler
	Filebin    *filebin.Handler
	Store      object.Store
	PublicDir  string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"status":          "ok",
			"ts":              time.Now().UTC().Format(time.RFC3339),
			"analyzeProvider": "foxit",
			"authMode":        cfg.Foxit.AuthMode(),
		})
	})
	api.GET("/config", func(c *gin.Context) {
		respond.OK(c, gin.H{"foxitClientId": cfg.Foxit.ClientID})
	})

	deps.Steps.RegisterRoutes(api)
	deps.Employees.RegisterRoutes(api)
	deps.Generation.RegisterRoutes(api)
	deps.Signing.RegisterRoutes(api)
	deps.Analysis.RegisterRoutes(api)
	deps.Filebin.RegisterRoutes(api)

	r.GET("/output/:name", serveArtifact(deps.Store))
	r.NoRoute(serveFrontend(deps.PublicDir))

	return r
}

// serveArtifact streams a generated PDF from the output store, whichever
// backend holds it.
func serveArtifact(store object.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		rc, err := store.Open(c.Request.Context(), name)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "no such file", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "could not open file", nil)
			return
		}
		defer rc.Close()

		c.Header("Content-Type", "application/pdf")
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, rc)
	}
}

// serveFrontend serves the static UI for anything that is not an API or
// output route, with index.html as the root page.
func serveFrontend(publicDir string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(publicDir))
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respond.Error(c, http.StatusNotFound, "not_found", "unknown endpoint", nil)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			respond.Error(c, http.StatusNotFound, "not_found", "unknown endpoint", nil)
			return
		}

		path := strings.TrimPrefix(filepath.Clean(c.Request.URL.Path), "/")
		if path == "" || path == "." {
			path = "index.html"
		}
		if _, err := os.Stat(filepath.Join(publicDir, path)); err != nil {
			respond.Error(c, http.StatusNotFound, "not_found", "unknown endpoint", nil)
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
