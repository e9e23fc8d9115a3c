package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/mail"
	"github.com/use-agent/leadforge/models"
)

// SendEmail returns a handler for POST /api/v1/email/send.
//
// Sends the campaign to every addressable lead row. The bulk sender
// paces deliveries, so large batches hold the request open; the response
// reports sent and skipped counts.
func SendEmail(bulk *mail.Bulk) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SendEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SendEmailResponse{
				Success: false,
				Error:   &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
			})
			return
		}

		res := bulk.Send(req)
		c.JSON(http.StatusOK, models.SendEmailResponse{
			Success:    res.Sent > 0 || res.Total == 0,
			Sent:       res.Sent,
			Skipped:    res.Skipped,
			TotalLeads: res.Total,
		})
	}
}
