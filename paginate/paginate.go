// Package paginate advances a search result listing to expose more
// results, trying progressively more generic strategies until one
// verifiably changes the page.
package paginate

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/leadforge/browser"
)

// Strategy names the mechanism that advanced the listing.
type Strategy string

const (
	StrategyNone     Strategy = ""
	StrategyNextPage Strategy = "next-page"
	StrategyLoadMore Strategy = "load-more"
	StrategyScroll   Strategy = "scroll"
	StrategyGeneric  Strategy = "generic"
)

var nextPageSelectors = []string{
	`a#pnnext`,
	`a[aria-label="Next page"]`,
	`a[aria-label="Next"]`,
	`td.b a[href*="start="]`,
}

var loadMoreKeywords = []string{"load more", "show more", "more results", "see more"}

var genericKeywords = []string{"next", "more", "load", "show", "continue"}

var scrollFractions = []float64{1.0, 0.5, 0.75, 0.9}

// Driver advances a listing page. Each attempt verifies its effect
// (URL change or content growth) before claiming success; an unverified
// click falls through to the next strategy.
type Driver struct {
	maxScrollAttempts int
	settle            time.Duration
	logger            *slog.Logger
}

func NewDriver(maxScrollAttempts int, settle time.Duration, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{maxScrollAttempts: maxScrollAttempts, settle: settle, logger: logger}
}

// Advance tries next-page, load-more, infinite-scroll, then a generic
// keyword click, returning the strategy that worked. StrategyNone means
// the listing is exhausted. Only StrategyNextPage implies a new page
// load; the others mutate the current page in place.
func (d *Driver) Advance(p browser.Page) (Strategy, bool) {
	if d.nextPage(p) {
		return StrategyNextPage, true
	}
	if d.loadMore(p) {
		return StrategyLoadMore, true
	}
	if d.scroll(p) {
		return StrategyScroll, true
	}
	if d.generic(p) {
		return StrategyGeneric, true
	}
	return StrategyNone, false
}

func (d *Driver) nextPage(p browser.Page) bool {
	before := p.URL()
	for _, sel := range nextPageSelectors {
		els, err := p.Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		el := els[0]
		if !el.Visible() {
			continue
		}
		if err := el.Click(); err != nil {
			continue
		}
		d.wait()
		if p.URL() != before {
			d.logger.Debug("advanced via next page link", "selector", sel)
			return true
		}
	}
	return false
}

func (d *Driver) loadMore(p browser.Page) bool {
	before := d.contentLength(p)
	for _, sel := range []string{"button", "a", "span", "div[role='button']"} {
		els, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil || !matchesAny(text, loadMoreKeywords) {
				continue
			}
			if !el.Visible() {
				continue
			}
			if err := el.Click(); err != nil {
				continue
			}
			d.wait()
			if after := d.contentLength(p); after > before {
				d.logger.Debug("advanced via load more control", "text", strings.TrimSpace(text))
				return true
			}
		}
	}
	return false
}

// scroll nudges the viewport through a cycle of positions and checks
// whether the document grew, as it does under infinite scroll.
func (d *Driver) scroll(p browser.Page) bool {
	for attempt := 0; attempt < d.maxScrollAttempts; attempt++ {
		before := d.scrollHeight(p)
		if before == 0 {
			return false
		}
		frac := scrollFractions[attempt%len(scrollFractions)]
		js := fmt.Sprintf(`() => { window.scrollTo(0, document.body.scrollHeight * %v); }`, frac)
		if _, err := p.Eval(js); err != nil {
			return false
		}
		d.wait()
		if d.scrollHeight(p) > before {
			d.logger.Debug("advanced via scroll", "attempt", attempt+1)
			return true
		}
	}
	return false
}

func (d *Driver) generic(p browser.Page) bool {
	beforeURL := p.URL()
	beforeLen := d.contentLength(p)
	for _, sel := range []string{"a", "button"} {
		els, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil || !matchesAny(text, genericKeywords) {
				continue
			}
			if !el.Visible() {
				continue
			}
			if err := el.Click(); err != nil {
				continue
			}
			d.wait()
			if p.URL() != beforeURL || d.contentLength(p) > beforeLen {
				d.logger.Debug("advanced via generic control", "text", strings.TrimSpace(text))
				return true
			}
		}
	}
	return false
}

func (d *Driver) wait() {
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
}

func (d *Driver) contentLength(p browser.Page) int {
	rawHTML, err := p.HTML()
	if err != nil {
		return 0
	}
	return len(rawHTML)
}

func (d *Driver) scrollHeight(p browser.Page) int {
	res, err := p.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0
	}
	return res.Int()
}

func matchesAny(text string, keywords []string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || len(t) > 40 {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
