package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/captcha"
	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/scrape"
)

// Health returns a handler for GET /api/v1/health.
//
// Degrades when captcha sessions pile up, which usually means runs are
// being challenged faster than operators solve them.
func Health(svc *scrape.Service, registry *captcha.Registry, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := registry.Len()

		status := "healthy"
		if pending > 5 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          status,
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			ActiveRuns:      int(svc.ActiveRuns()),
			PendingCaptchas: pending,
			Version:         "0.1.0",
		})
	}
}
