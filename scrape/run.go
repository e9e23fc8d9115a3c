package scrape

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/dedupe"
	"github.com/use-agent/leadforge/models"
	"github.com/use-agent/leadforge/paginate"
)

// run holds the mutable state of a single scrape. The listing tab keeps
// the search results (and any load-more / scroll state) alive while the
// work tab visits business sites, so in-place pagination survives.
type run struct {
	svc   *Service
	query models.LeadQuery
	sink  Sink

	browser browser.Browser
	listing browser.Page
	work    browser.Page

	// pageCancel tears down page bindings on close. Pages are bound to
	// their own context, not the request's, so a run suspended on a
	// captcha survives the originating request returning.
	pageCancel context.CancelFunc
	stopHijack func()

	visited   map[string]struct{}
	leads     []models.Lead
	stats     models.RunStats
	pageIndex int
	shotTaken bool
}

// siteOpTimeout bounds any single operation against a destination page.
const siteOpTimeout = 30 * time.Second

func (r *run) start(ctx context.Context) (*Result, error) {
	r.visited = make(map[string]struct{})

	pageCtx, cancel := context.WithCancel(context.Background())
	r.pageCancel = cancel

	listing, err := r.browser.NewPage()
	if err != nil {
		return nil, err
	}
	r.listing = listing.Context(pageCtx)
	r.stopHijack = browser.BlockResources(r.listing, r.svc.scfg.BlockedResourceTypes)

	work, err := r.browser.NewPage()
	if err != nil {
		return nil, err
	}
	r.work = work.Context(pageCtx)

	r.emit(models.ProgressEvent{
		Type:    models.EventProgress,
		Message: fmt.Sprintf("Searching for %s in %s...", r.query.Category, r.query.Location),
	})

	if err := r.listing.Navigate(searchURL(r.query)); err != nil {
		return nil, models.NewAPIError(models.ErrCodeNavigation, "search page navigation failed", err)
	}

	return r.loop(ctx)
}

// loop harvests the current listing page, paginates, and repeats. It is
// re-entered after a captcha resume with all state intact.
func (r *run) loop(ctx context.Context) (*Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return r.finish(), nil
		}

		if challenge := r.svc.detector.Detect(r.listing); challenge != nil {
			res, handled, err := r.handleChallenge(ctx, challenge)
			if handled {
				return res, err
			}
		}

		r.stats.PagesChecked++
		r.emit(models.ProgressEvent{
			Type:       models.EventProgress,
			Message:    fmt.Sprintf("Scanning results page %d...", r.stats.PagesChecked),
			Percent:    r.percent(),
			LeadsFound: len(r.leads),
		})

		links := r.collectLinks()
		if len(links) == 0 {
			r.debugScreenshot()
		}
		for _, link := range links {
			if len(r.leads) >= r.query.Count || r.stats.SitesScraped >= r.svc.scfg.MaxSitesPerRun {
				break
			}
			if err := ctx.Err(); err != nil {
				return r.finish(), nil
			}
			r.visitSite(ctx, link)
		}

		if len(r.leads) >= r.query.Count || r.stats.SitesScraped >= r.svc.scfg.MaxSitesPerRun {
			return r.finish(), nil
		}
		if r.pageIndex+1 >= r.svc.scfg.MaxPages {
			return r.finish(), nil
		}

		strategy, ok := r.svc.pager.Advance(r.listing)
		if !ok {
			return r.finish(), nil
		}
		if strategy == paginate.StrategyNextPage {
			r.pageIndex++
		}
	}
}

func (r *run) visitSite(ctx context.Context, link string) {
	r.visited[link] = struct{}{}
	r.stats.SitesScraped++
	_ = r.svc.limiter.Wait(ctx)

	lead, reason := r.svc.extractor.Extract(r.work.Timeout(siteOpTimeout), link)
	if lead == nil {
		r.stats.Rejects++
		r.svc.logger.Debug("site rejected", "url", link, "reason", string(reason))
		return
	}
	if dedupe.IsDuplicate(*lead, r.leads) {
		r.stats.Duplicates++
		return
	}
	r.leads = append(r.leads, *lead)

	r.emit(models.ProgressEvent{
		Type:       models.EventProgress,
		Message:    fmt.Sprintf("Found %s (%d of %d)", lead.Name, len(r.leads), r.query.Count),
		Percent:    r.percent(),
		LeadsFound: len(r.leads),
	})
}

// handleChallenge suspends (handoff) or blocks (block mode) on a captcha.
// handled is false when the challenge cleared and the loop should go on.
func (r *run) handleChallenge(ctx context.Context, challenge *models.CaptchaChallenge) (*Result, bool, error) {
	if r.svc.ccfg.Mode == config.CaptchaModeBlock {
		r.svc.logger.Info("captcha detected, waiting for manual solve", "query", r.query.RawPrompt)
		if r.svc.detector.WaitCleared(ctx, r.listing, r.svc.ccfg.PollInterval, r.svc.ccfg.MaxPollAttempts) {
			r.svc.solved.Mark(r.query.SolvedKey())
			return nil, false, nil
		}
		// Give back whatever was collected before the challenge rather
		// than failing the whole run.
		r.svc.logger.Warn("captcha never cleared, returning partial result",
			"query", r.query.RawPrompt, "leads", len(r.leads))
		return r.finish(), true, nil
	}

	var sessionID string
	resume := func(token string) {
		r.svc.logger.Info("resuming run after captcha solve", "session_id", sessionID)
		r.svc.solved.Mark(r.query.SolvedKey())
		r.svc.storeRecord(sessionID, StatusRunning, nil, nil)

		rctx, cancel := context.WithTimeout(context.Background(), r.svc.scfg.RunTimeout)
		defer cancel()
		res, err := r.loop(rctx)
		r.close()
		if err != nil {
			r.svc.storeRecord(sessionID, StatusFailed, nil, err)
			r.emit(models.ProgressEvent{Type: models.EventError, Message: err.Error()})
			return
		}
		r.svc.storeRecord(sessionID, StatusComplete, res, nil)
	}
	fail := func(err error) {
		r.close()
		r.svc.storeRecord(sessionID, StatusFailed, nil, err)
		r.emit(models.ProgressEvent{Type: models.EventError, Message: err.Error()})
	}

	sessionID = r.svc.registry.Register(r.query, challenge.SiteKey, r.listing, resume, fail)
	r.svc.storeRecord(sessionID, StatusPending, nil, nil)

	r.emit(models.ProgressEvent{
		Type:      models.EventCaptcha,
		Message:   "Captcha encountered; waiting for operator solve",
		SessionID: sessionID,
		SiteKey:   challenge.SiteKey,
	})
	return &Result{
		Leads:   r.leads,
		Stats:   r.stats,
		Pending: true,
		Session: sessionID,
		SiteKey: challenge.SiteKey,
	}, true, nil
}

// debugScreenshot captures the listing once per run when it yields no
// business links, so a selector drift or consent wall can be diagnosed
// after the fact.
func (r *run) debugScreenshot() {
	if r.shotTaken {
		return
	}
	r.shotTaken = true

	shot, err := r.listing.Screenshot()
	if err != nil || len(shot) == 0 {
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("leadforge-listing-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		r.svc.logger.Warn("listing screenshot write failed", "error", err)
		return
	}
	r.svc.logger.Info("listing produced no business links", "screenshot", path, "url", r.listing.URL())
}

// collectLinks pulls candidate business URLs off the current listing,
// skipping already visited sites and portal/social domains.
func (r *run) collectLinks() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, sel := range []string{`div.g a[href^="http"]`, `div[data-ved] a[href^="http"]`, `a[href^="http"]`} {
		els, err := r.listing.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			href, err := el.Attribute("href")
			if err != nil || href == "" {
				continue
			}
			link := normalizeLink(href)
			if link == "" {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			if _, old := r.visited[link]; old {
				continue
			}
			seen[link] = struct{}{}
			out = append(out, link)
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

func (r *run) percent() int {
	if r.query.Count <= 0 {
		return 0
	}
	p := len(r.leads) * 100 / r.query.Count
	if p > 100 {
		p = 100
	}
	return p
}

func (r *run) finish() *Result {
	r.emit(models.ProgressEvent{
		Type:       models.EventComplete,
		Message:    fmt.Sprintf("Done: %d leads from %d sites", len(r.leads), r.stats.SitesScraped),
		Percent:    100,
		LeadsFound: len(r.leads),
		Leads:      r.leads,
		Count:      len(r.leads),
	})
	return &Result{Leads: r.leads, Stats: r.stats}
}

func (r *run) emit(ev models.ProgressEvent) {
	if r.sink != nil {
		r.sink(ev)
	}
}

func (r *run) close() {
	if r.stopHijack != nil {
		r.stopHijack()
		r.stopHijack = nil
	}
	if r.pageCancel != nil {
		r.pageCancel()
		r.pageCancel = nil
	}
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			r.svc.logger.Warn("browser close failed", "error", err)
		}
		r.browser = nil
	}
}

// skipDomains never contain a business's own site.
var skipDomains = []string{
	"google.", "youtube.", "facebook.", "instagram.", "twitter.", "x.com",
	"linkedin.", "tiktok.", "pinterest.", "yelp.", "wikipedia.",
}

var skipPaths = []string{"/privacy", "/terms", "/legal"}

func normalizeLink(href string) string {
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range skipDomains {
		if strings.Contains(host, d) {
			return ""
		}
	}
	lowerPath := strings.ToLower(u.Path)
	for _, p := range skipPaths {
		if strings.HasPrefix(lowerPath, p) {
			return ""
		}
	}
	u.Fragment = ""
	return u.String()
}

func searchURL(q models.LeadQuery) string {
	terms := fmt.Sprintf("%s in %s contact phone number", q.Category, q.Location)
	return "https://www.google.com/search?q=" + url.QueryEscape(terms)
}
