package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can carry them.
const (
	StepKeyContextKey     = "stepKey"
	EmployeeKeyContextKey = "employeeKey"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if stepKey, ok := c.Get(StepKeyContextKey); ok {
			fields["step_key"] = stepKey
		}
		if employeeKey, ok := c.Get(EmployeeKeyContextKey); ok {
			fields["employee_key"] = employeeKey
		}

		telemetry.Info("request.complete", fields)
	}
}
