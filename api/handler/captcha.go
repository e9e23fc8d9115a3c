package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/captcha"
	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/scrape"
)

// ResolveCaptcha returns a handler for POST /api/v1/captcha/resolve/:sessionId.
//
// Hands the solved token to the suspended run. Unknown or expired session
// IDs get 404 with no side effects.
func ResolveCaptcha(registry *captcha.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResolveCaptchaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ResolveCaptchaResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if err := registry.Resolve(c.Param("sessionId"), req.Token); err != nil {
			apiErr := asAPIError(err)
			c.JSON(mapErrorToStatus(apiErr), models.ResolveCaptchaResponse{
				Success: false,
				Error:   apiErr.ToDetail(),
			})
			return
		}
		c.JSON(http.StatusOK, models.ResolveCaptchaResponse{Success: true})
	}
}

// CaptchaStatus returns a handler for GET /api/v1/captcha/status/:sessionId.
//
// Lifecycle: "pending" (waiting for a solve) → "running" (resumed) →
// "complete" (leads attached) or "failed".
func CaptchaStatus(svc *scrape.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		status, result, err := svc.Status(sessionID)
		if status == "" {
			apiErr := asAPIError(err)
			c.JSON(mapErrorToStatus(apiErr), models.CaptchaStatusResponse{
				SessionID: sessionID,
				Status:    scrape.StatusFailed,
				Error:     apiErr.ToDetail(),
			})
			return
		}

		resp := models.CaptchaStatusResponse{SessionID: sessionID, Status: status}
		if status == scrape.StatusComplete && result != nil {
			resp.Leads = result.Leads
			resp.Stats = &result.Stats
		}
		if status == scrape.StatusFailed && err != nil {
			resp.Error = asAPIError(err).ToDetail()
		}
		c.JSON(http.StatusOK, resp)
	}
}
