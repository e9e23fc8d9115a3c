// Package scrape drives the self-guided lead hunt: search the web for
// businesses matching a parsed query, visit each candidate site, extract
// contact details, and keep going until the requested count is met or
// the listing runs dry.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/captcha"
	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/extract"
	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/paginate"
)

// LaunchFunc starts a browser. Injectable for tests.
type LaunchFunc func(cfg config.BrowserConfig) (browser.Browser, error)

// Sink receives progress events during a run. May be nil.
type Sink func(models.ProgressEvent)

// Result is the outcome of a run. When Pending is set the run is
// suspended on a captcha and the caller should surface SessionID.
type Result struct {
	Leads   []models.Lead
	Stats   models.RunStats
	Pending bool
	Session string
	SiteKey string
}

// Run lifecycle states exposed through the captcha status endpoint.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

type runRecord struct {
	Status    string
	Result    *Result
	Err       error
	UpdatedAt time.Time
}

// Service owns the browser lifecycle for scrape runs. Runs are strictly
// sequential per browser instance; each run gets its own browser.
type Service struct {
	scfg config.ScraperConfig
	bcfg config.BrowserConfig
	ccfg config.CaptchaConfig

	registry  *captcha.Registry
	solved    *captcha.SolvedKeys
	detector  *captcha.Detector
	extractor *extract.Extractor
	pager     *paginate.Driver
	launch    LaunchFunc
	limiter   *rate.Limiter
	logger    *slog.Logger

	runs       sync.Map // session ID -> *runRecord
	activeRuns atomic.Int64

	done chan struct{}
	once sync.Once
}

func NewService(
	scfg config.ScraperConfig,
	bcfg config.BrowserConfig,
	ccfg config.CaptchaConfig,
	registry *captcha.Registry,
	solved *captcha.SolvedKeys,
	verifier extract.MXVerifier,
	launch LaunchFunc,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if launch == nil {
		launch = browser.Launch
	}
	if !scfg.VerifyMX {
		verifier = nil
	}
	s := &Service{
		scfg:      scfg,
		bcfg:      bcfg,
		ccfg:      ccfg,
		registry:  registry,
		solved:    solved,
		detector:  captcha.NewDetector(),
		extractor: extract.New(scfg.SettleDelay, verifier, logger),
		pager:     paginate.NewDriver(scfg.MaxScrollAttempts, scfg.SettleDelay, logger),
		launch:    launch,
		limiter:   rate.NewLimiter(rate.Every(scfg.VisitInterval), 1),
		logger:    logger,
		done:      make(chan struct{}),
	}
	go s.expireRecords()
	return s
}

// ActiveRuns reports how many runs are currently executing.
func (s *Service) ActiveRuns() int64 { return s.activeRuns.Load() }

// Status returns the lifecycle record for a suspended or resumed run.
func (s *Service) Status(sessionID string) (string, *Result, error) {
	v, ok := s.runs.Load(sessionID)
	if !ok {
		return "", nil, models.NewAPIError(models.ErrCodeSessionNotFound,
			fmt.Sprintf("no run for session %q", sessionID), nil)
	}
	rec := v.(*runRecord)
	return rec.Status, rec.Result, rec.Err
}

// Stop terminates the record expiry loop.
func (s *Service) Stop() {
	s.once.Do(func() { close(s.done) })
}

// Run executes a full scrape for query. It returns either a finished
// result or a pending one carrying the captcha session ID. The browser
// is closed before return except when the run is suspended, in which
// case ownership passes to the captcha session callbacks.
func (s *Service) Run(ctx context.Context, query models.LeadQuery, sink Sink) (*Result, error) {
	s.activeRuns.Add(1)
	defer s.activeRuns.Add(-1)

	ctx, cancel := context.WithTimeout(ctx, s.scfg.RunTimeout)
	defer cancel()

	bcfg := s.bcfg
	if !bcfg.Headless && s.solved.Seen(query.SolvedKey()) {
		// A recent solve for this query suggests the next run will not
		// be challenged, so prefer the cheaper headless launch.
		bcfg.Headless = true
	}

	b, err := s.launch(bcfg)
	if err != nil {
		return nil, err
	}

	r := &run{svc: s, query: query, sink: sink, browser: b}
	res, err := r.start(ctx)
	if err != nil {
		r.close()
		return nil, err
	}
	if !res.Pending {
		r.close()
	}
	return res, nil
}

func (s *Service) storeRecord(sessionID, status string, res *Result, err error) {
	s.runs.Store(sessionID, &runRecord{Status: status, Result: res, Err: err, UpdatedAt: time.Now()})
}

func (s *Service) expireRecords() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Hour)
			s.runs.Range(func(k, v any) bool {
				if v.(*runRecord).UpdatedAt.Before(cutoff) {
					s.runs.Delete(k)
				}
				return true
			})
		}
	}
}
