package captcha

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/models"
)

// DefaultSiteKey is Google's public search reCAPTCHA key, used when the
// real key cannot be recovered from the page.
const DefaultSiteKey = "6LfwuyUTAAAAAOAmoS0fdqijC2PbbdH4kjq62Y1b"

// challengeSelectors identify a challenge interstitial.
var challengeSelectors = []string{
	`[id*="captcha"]`,
	`[class*="captcha"]`,
	`[id*="recaptcha"]`,
	`[class*="recaptcha"]`,
	`iframe[src*="recaptcha"]`,
}

// resultSelectors identify a normal search result listing. Their presence
// means the page is usable even if a stray captcha-named node exists.
var resultSelectors = []string{
	`div[data-ved]`,
	`div.g`,
	`h3`,
	`#search`,
}

// Detector inspects a page for challenge interstitials.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Detect reports whether p is currently showing a challenge, and if so
// recovers the site key for operator-side rendering.
func (d *Detector) Detect(p browser.Page) *models.CaptchaChallenge {
	if !d.hasAny(p, challengeSelectors) {
		return nil
	}
	if d.hasAny(p, resultSelectors) {
		return nil
	}
	return &models.CaptchaChallenge{
		Detected: true,
		SiteKey:  d.siteKey(p),
	}
}

// Cleared reports whether the challenge is gone and results are showing.
// Both conditions are required: a blank interstitial mid-transition has
// no challenge markers but is not usable either.
func (d *Detector) Cleared(p browser.Page) bool {
	return d.hasAny(p, resultSelectors) && !d.hasAny(p, challengeSelectors)
}

// WaitCleared polls until the challenge disappears, the attempt budget is
// spent, or ctx is done. Used in block mode where no operator handoff is
// available.
func (d *Detector) WaitCleared(ctx context.Context, p browser.Page, interval time.Duration, maxAttempts int) bool {
	for i := 0; i < maxAttempts; i++ {
		if d.Cleared(p) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return d.Cleared(p)
}

func (d *Detector) hasAny(p browser.Page, selectors []string) bool {
	for _, sel := range selectors {
		els, err := p.Elements(sel)
		if err == nil && len(els) > 0 {
			return true
		}
	}
	return false
}

// siteKey tries, in order: a data-sitekey attribute, the k= parameter of
// a recaptcha iframe src, a page-source scan, and finally the default key.
func (d *Detector) siteKey(p browser.Page) string {
	if els, err := p.Elements(`[data-sitekey]`); err == nil {
		for _, el := range els {
			if key, err := el.Attribute("data-sitekey"); err == nil && key != "" {
				return key
			}
		}
	}
	if els, err := p.Elements(`iframe[src*="recaptcha"]`); err == nil {
		for _, el := range els {
			src, err := el.Attribute("src")
			if err != nil || src == "" {
				continue
			}
			if u, err := url.Parse(src); err == nil {
				if key := u.Query().Get("k"); key != "" {
					return key
				}
			}
		}
	}
	if rawHTML, err := p.HTML(); err == nil {
		if key := siteKeyFromSource(rawHTML); key != "" {
			return key
		}
	}
	return DefaultSiteKey
}

func siteKeyFromSource(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	if key, ok := doc.Find(`[data-sitekey]`).First().Attr("data-sitekey"); ok && key != "" {
		return key
	}
	var found string
	doc.Find(`iframe[src*="recaptcha"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok {
			return true
		}
		if u, err := url.Parse(src); err == nil {
			if key := u.Query().Get("k"); key != "" {
				found = key
				return false
			}
		}
		return true
	})
	return found
}
