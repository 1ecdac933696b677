package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck pings one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health reports the reachability of every dependency without exposing the underlying errors.
// Any failing check turns the answer into a 503.
func Health(checks ...HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		deps := make(gin.H, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				deps[hc.Name] = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[hc.Name] = "connected"
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"dependencies": deps,
			"timestamp":    time.Now().UTC(),
		})
	}
}
