package captcha

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/models"
)

// Session is a suspended scrape run waiting for an operator-solved token.
type Session struct {
	ID        string
	Query     models.LeadQuery
	SiteKey   string
	CreatedAt time.Time

	page   browser.Page
	resume func(token string)
	fail   func(err error)
}

// Registry holds suspended sessions keyed by ID. Resolve and the expiry
// sweeper both remove the session before invoking its callback, so each
// session resumes or fails exactly once.
type Registry struct {
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	done chan struct{}
	once sync.Once
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Register suspends a run and returns the session ID handed to the client.
// resume is called with the solved token; fail is called if the session
// expires unresolved.
func (r *Registry) Register(query models.LeadQuery, siteKey string, page browser.Page, resume func(token string), fail func(err error)) string {
	s := &Session{
		ID:        uuid.NewString(),
		Query:     query,
		SiteKey:   siteKey,
		CreatedAt: time.Now(),
		page:      page,
		resume:    resume,
		fail:      fail,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("captcha session registered",
		"session_id", s.ID, "query", query.RawPrompt, "site_key", siteKey)
	return s.ID
}

// Resolve injects the solved token into the suspended page and resumes
// the run. Unknown or already-consumed session IDs return
// ErrCodeSessionNotFound with no side effects.
func (r *Registry) Resolve(sessionID, token string) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return models.NewAPIError(models.ErrCodeSessionNotFound,
			fmt.Sprintf("no pending captcha session %q", sessionID), nil)
	}

	if err := injectToken(s.page, token); err != nil {
		// The page may have navigated on its own; the resume path
		// re-checks the challenge state, so keep going.
		r.logger.Warn("token injection failed", "session_id", sessionID, "error", err)
	}

	r.logger.Info("captcha session resolved", "session_id", sessionID)
	go s.resume(token)
	return nil
}

// Len reports the number of pending sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Stop terminates the sweeper. Pending sessions are failed.
func (r *Registry) Stop() {
	r.once.Do(func() { close(r.done) })

	r.mu.Lock()
	expired := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		expired = append(expired, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.fail(models.NewAPIError(models.ErrCodeCaptchaTimeout, "captcha registry shut down", nil))
	}
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		r.logger.Warn("captcha session expired", "session_id", s.ID, "age", time.Since(s.CreatedAt))
		s.fail(models.NewAPIError(models.ErrCodeCaptchaTimeout,
			"captcha was not solved before the session expired", nil))
	}
}

// injectToken writes the solved token into every g-recaptcha-response
// field on the suspended page so the site accepts the solution.
func injectToken(p browser.Page, token string) error {
	js := fmt.Sprintf(`() => {
		const token = %s;
		const fields = document.querySelectorAll('textarea[name="g-recaptcha-response"], #g-recaptcha-response');
		fields.forEach(f => { f.style.display = 'block'; f.value = token; });
		return fields.length;
	}`, strconv.Quote(token))
	_, err := p.Eval(js)
	return err
}
