package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const statusCheckTimeout = 2 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type StatusHandler struct {
	checks map[string]HealthCheck
}

func NewStatusHandler(checks map[string]HealthCheck) *StatusHandler {
	return &StatusHandler{checks: checks}
}

func (h *StatusHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	code := http.StatusOK
	deps := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	status := "Available"
	if code != http.StatusOK {
		status = "Degraded"
	}
	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}
