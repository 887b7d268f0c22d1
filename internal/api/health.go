package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether one dependency is reachable.
type HealthChecker func() error

// HealthOptions configures the health and readiness endpoints.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	Checks         map[string]HealthChecker
}

// HealthCheck handles GET /health. It reports liveness only.
func (o HealthOptions) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": o.ServiceName,
		"version": o.ServiceVersion,
	})
}

// ReadyCheck handles GET /ready. It runs every registered dependency check
// and degrades to 503 when any fails.
func (o HealthOptions) ReadyCheck(c *gin.Context) {
	status := http.StatusOK
	checks := make(map[string]string, len(o.Checks))
	for name, check := range o.Checks {
		if err := check(); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not ready"
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": o.ServiceName,
		"checks":  checks,
	})
}
