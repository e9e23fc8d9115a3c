package handler

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/prompt"
	"github.com/use-agent/leadforge/provider"
	"github.com/use-agent/leadforge/scrape"
)

// GenerateLeads returns a handler for POST /api/v1/leads.
//
// Flow:
//  1. Parse & validate request; parse the free-text prompt once.
//  2. Route by source: hosted actor / leads API / scraping engine.
//  3. A scrape run that hits a captcha returns the session ID instead of
//     leads; the client solves it and polls the captcha status endpoint.
func GenerateLeads(svc *scrape.Service, providers *provider.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.GenerateLeadsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.LeadsResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		query, err := prompt.Parse(req.Prompt)
		if err != nil {
			respondError(c, err)
			return
		}
		if req.MaxResults > 0 && req.MaxResults < query.Count {
			query.Count = req.MaxResults
		}

		if req.Source == "" {
			req.Source = models.SourceScraper
		}

		if req.Source != models.SourceScraper {
			p, err := providers.Lookup(req.Source)
			if err != nil {
				respondError(c, err)
				return
			}
			leads, err := p.Fetch(c.Request.Context(), query, query.Count)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, models.LeadsResponse{
				Success: true,
				Leads:   leads,
				Meta: &models.LeadsMeta{
					Count:      len(leads),
					Source:     req.Source,
					DurationMs: time.Since(start).Milliseconds(),
				},
			})
			return
		}

		res, err := svc.Run(c.Request.Context(), query, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		if res.Pending {
			c.JSON(http.StatusOK, captchaPendingResponse(res))
			return
		}
		c.JSON(http.StatusOK, models.LeadsResponse{
			Success: true,
			Leads:   res.Leads,
			Meta: &models.LeadsMeta{
				Count:      len(res.Leads),
				Source:     models.SourceScraper,
				DurationMs: time.Since(start).Milliseconds(),
				Stats:      res.Stats,
			},
		})
	}
}

// captchaPendingResponse tells the client the run is parked on a captcha
// and how to pick it up again.
func captchaPendingResponse(res *scrape.Result) models.LeadsResponse {
	return models.LeadsResponse{
		Success:         false,
		CaptchaRequired: true,
		SessionID:       res.Session,
		SiteKey:         res.SiteKey,
		Message:         "captcha detected; solve it and poll the captcha status endpoint",
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeCaptchaPending,
			Message: "captcha solve required before leads can be returned",
		},
	}
}

// streamSink bridges run progress into an SSE channel. Events arriving
// after the client disconnects are dropped, not delivered; a run resumed
// after captcha keeps producing events with nobody listening.
type streamSink struct {
	mu     sync.Mutex
	ch     chan models.ProgressEvent
	closed bool
}

func newStreamSink() *streamSink {
	return &streamSink{ch: make(chan models.ProgressEvent, 32)}
}

func (s *streamSink) emit(ev models.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
	}
}

func (s *streamSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// StreamLeads returns a handler for GET /api/v1/leads/stream.
//
// Server-sent events: "progress" during the run, then exactly one of
// "complete", "captcha" or "error". Only the scraping engine streams;
// provider sources answer in one shot on the POST endpoint.
func StreamLeads(svc *scrape.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		promptText := c.Query("prompt")
		if promptText == "" {
			c.JSON(http.StatusBadRequest, models.LeadsResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "prompt query parameter is required",
				},
			})
			return
		}

		query, err := prompt.Parse(promptText)
		if err != nil {
			respondError(c, err)
			return
		}
		if mr, err := strconv.Atoi(c.Query("max_results")); err == nil && mr > 0 && mr < query.Count {
			query.Count = mr
		}

		sink := newStreamSink()
		go func() {
			defer sink.close()
			if _, err := svc.Run(c.Request.Context(), query, sink.emit); err != nil {
				sink.emit(models.ProgressEvent{
					Type:    models.EventError,
					Message: asAPIError(err).Message,
				})
			}
		}()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Stream(func(w io.Writer) bool {
			ev, ok := <-sink.ch
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		})
	}
}
