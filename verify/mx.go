// Package verify performs lightweight deliverability checks on extracted
// email addresses. Only the domain's MX presence is checked; no SMTP
// handshake is attempted.
package verify

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

var defaultServers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// LookupFunc resolves MX records for a domain. Injectable for tests.
type LookupFunc func(domain string) (int, error)

// MXChecker answers whether a domain can receive mail, caching answers
// for the life of the process. A lookup error counts as deliverable so
// transient DNS trouble never discards an otherwise good lead.
type MXChecker struct {
	lookup LookupFunc
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]bool
}

func NewMXChecker(logger *slog.Logger) *MXChecker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &MXChecker{logger: logger, cache: make(map[string]bool)}
	c.lookup = c.dnsLookup
	return c
}

// NewMXCheckerWithLookup builds a checker around a custom resolver.
func NewMXCheckerWithLookup(lookup LookupFunc, logger *slog.Logger) *MXChecker {
	c := NewMXChecker(logger)
	c.lookup = lookup
	return c
}

// HasMX reports whether domain has at least one MX record.
func (c *MXChecker) HasMX(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}

	c.mu.Lock()
	if ok, seen := c.cache[domain]; seen {
		c.mu.Unlock()
		return ok
	}
	c.mu.Unlock()

	count, err := c.lookup(domain)
	ok := err != nil || count > 0
	if err != nil {
		c.logger.Debug("mx lookup failed, assuming deliverable", "domain", domain, "error", err)
	}

	c.mu.Lock()
	c.cache[domain] = ok
	c.mu.Unlock()
	return ok
}

func (c *MXChecker) dnsLookup(domain string) (int, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	m.RecursionDesired = true

	client := &dns.Client{Timeout: 5 * time.Second}
	var lastErr error
	for _, server := range defaultServers {
		resp, _, err := client.Exchange(m, server)
		if err != nil {
			lastErr = err
			continue
		}
		count := 0
		for _, ans := range resp.Answer {
			if _, isMX := ans.(*dns.MX); isMX {
				count++
			}
		}
		return count, nil
	}
	return 0, lastErr
}
