package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/models"
)

// Reason explains why a visited site produced no lead.
type Reason string

const (
	ReasonAccepted      Reason = ""
	ReasonPageError     Reason = "page-error"
	ReasonNoContactInfo Reason = "no-contact-info"
	ReasonMissingPhone  Reason = "missing-phone"
	ReasonMissingEmail  Reason = "missing-email"
)

// Targeted selector groups, tried before falling back to a source scan.
var (
	phoneSelectors = []string{
		`a[href^="tel:"]`,
		`[class*="phone"]`, `[id*="phone"]`,
		`[class*="call"]`, `[id*="call"]`,
		`[class*="contact"]`, `[id*="contact"]`,
	}
	emailSelectors = []string{
		`a[href^="mailto:"]`,
		`[class*="email"]`, `[id*="email"]`,
		`[class*="contact"]`, `[id*="contact"]`,
	}
	addressSelectors = []string{
		`address`,
		`[class*="address"]`, `[id*="address"]`,
		`[class*="location"]`, `[id*="location"]`,
	}
)

// MXVerifier gates email acceptance on deliverability of the domain.
type MXVerifier interface {
	HasMX(domain string) bool
}

// Extractor visits business sites on a shared page handle and pulls
// contact fields out of them. All navigation and DOM errors are absorbed:
// a bad site yields a reject reason, never a run failure.
type Extractor struct {
	settleDelay time.Duration
	verifier    MXVerifier
	logger      *slog.Logger
}

func New(settleDelay time.Duration, verifier MXVerifier, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{settleDelay: settleDelay, verifier: verifier, logger: logger}
}

// Extract navigates p to destURL and attempts to build a lead. A lead
// needs both a valid phone and a valid email; name falls back from the
// URL to the page title.
func (x *Extractor) Extract(p browser.Page, destURL string) (*models.Lead, Reason) {
	if err := p.Navigate(destURL); err != nil {
		x.logger.Debug("site navigation failed", "url", destURL, "error", err)
		return nil, ReasonPageError
	}
	if x.settleDelay > 0 {
		time.Sleep(x.settleDelay)
	}

	phone := x.firstValidPhone(x.selectorTexts(p, phoneSelectors))
	email := x.firstValidEmail(x.selectorEmails(p, emailSelectors))
	address := firstPlausibleAddress(x.selectorTexts(p, addressSelectors))

	if phone == "" || email == "" {
		rawHTML, err := p.HTML()
		if err != nil {
			x.logger.Debug("page source unavailable", "url", destURL, "error", err)
			return nil, ReasonPageError
		}
		scan := scanSource(rawHTML)
		if phone == "" {
			phone = x.firstValidPhone(scan.Phones)
		}
		if email == "" {
			email = x.firstValidEmail(scan.Emails)
		}
		if address == "" {
			address = firstPlausibleAddress(scan.Lines)
		}
	}

	switch {
	case phone == "" && email == "":
		return nil, ReasonNoContactInfo
	case phone == "":
		return nil, ReasonMissingPhone
	case email == "":
		return nil, ReasonMissingEmail
	}

	name := NameFromURL(destURL)
	if name == "" {
		if rawHTML, err := p.HTML(); err == nil {
			name = cleanTitle(scanSource(rawHTML).Title)
		}
	}

	return &models.Lead{
		Name:    name,
		Phone:   phone,
		Email:   email,
		Website: destURL,
		Address: address,
		Source:  models.SourceScraper,
	}, ReasonAccepted
}

// selectorTexts collects the text of every element matching the selector
// group. Lookup errors are treated as no match.
func (x *Extractor) selectorTexts(p browser.Page, selectors []string) []string {
	var out []string
	for _, sel := range selectors {
		els, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if text, err := el.Text(); err == nil && strings.TrimSpace(text) != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

// selectorEmails collects candidate emails from matching elements,
// preferring the mailto href over the link text.
func (x *Extractor) selectorEmails(p browser.Page, selectors []string) []string {
	var out []string
	for _, sel := range selectors {
		els, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if href, err := el.Attribute("href"); err == nil && strings.HasPrefix(href, "mailto:") {
				out = append(out, CleanEmail(href))
				continue
			}
			if text, err := el.Text(); err == nil {
				out = append(out, FindEmails(text)...)
			}
		}
	}
	return out
}

func (x *Extractor) firstValidPhone(candidates []string) string {
	for _, c := range candidates {
		for _, m := range append(FindPhones(c), c) {
			if ValidPhone(m) {
				return strings.TrimSpace(m)
			}
		}
	}
	return ""
}

func (x *Extractor) firstValidEmail(candidates []string) string {
	for _, c := range candidates {
		email := CleanEmail(c)
		if !ValidEmail(email) {
			continue
		}
		if x.verifier != nil && !x.verifier.HasMX(emailDomain(email)) {
			x.logger.Debug("email domain has no MX record", "email", email)
			continue
		}
		return email
	}
	return ""
}

func firstPlausibleAddress(candidates []string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if PlausibleAddress(c) {
			return c
		}
	}
	return ""
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return email
}
