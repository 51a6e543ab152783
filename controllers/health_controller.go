package controllers

import (
	"context"
	"lifeline/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings one dependency. A nil check reports "disabled".
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	version   string
	startedAt time.Time
	checks    map[string]HealthCheck
}

func NewHealthController(version string, checks map[string]HealthCheck) *HealthController {
	return &HealthController{
		version:   version,
		startedAt: time.Now(),
		checks:    checks,
	}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	services := make(map[string]string, len(hc.checks))
	for name, check := range hc.checks {
		switch {
		case check == nil:
			services[name] = "disabled"
		case check(ctx) != nil:
			services[name] = "unhealthy"
		default:
			services[name] = "healthy"
		}
	}

	resp := utils.HealthCheckResponse(services, hc.version, utils.FormatDuration(time.Since(hc.startedAt)))
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
