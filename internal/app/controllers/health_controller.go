package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and dependency health
type HealthController struct {
	checks map[string]Pinger
	logger zerolog.Logger
}

// NewHealthController probes every named dependency in checks on /healthz
func NewHealthController(checks map[string]Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{checks: checks, logger: logger}
}

// Ping is the liveness probe
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}

// Healthz pings every dependency and answers 503 when any is down
func (c *HealthController) Healthz(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check.Ping(probeCtx); err != nil {
			c.logger.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	ctx.JSON(status, gin.H{"status": state, "checks": results})
}
