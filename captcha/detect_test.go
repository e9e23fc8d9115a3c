package captcha

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/leadforge/browser"
)

type markerElement struct {
	attr map[string]string
}

func (e *markerElement) Text() (string, error) { return "", nil }
func (e *markerElement) Attribute(name string) (string, error) {
	return e.attr[name], nil
}
func (e *markerElement) Click() error  { return nil }
func (e *markerElement) Visible() bool { return true }

// markerPage shows challenge and/or result-listing markers on demand.
type markerPage struct {
	stubPage
	challenge bool
	results   bool
	siteKey   string
}

func (p *markerPage) Elements(sel string) ([]browser.Element, error) {
	switch {
	case strings.Contains(sel, "captcha"):
		if p.challenge {
			return []browser.Element{&markerElement{}}, nil
		}
	case strings.Contains(sel, "sitekey"):
		if p.challenge && p.siteKey != "" {
			return []browser.Element{&markerElement{attr: map[string]string{"data-sitekey": p.siteKey}}}, nil
		}
	case sel == `div.g` || sel == `h3` || sel == `#search` || sel == `div[data-ved]`:
		if p.results {
			return []browser.Element{&markerElement{}}, nil
		}
	}
	return nil, nil
}

func TestDetect(t *testing.T) {
	d := NewDetector()

	if got := d.Detect(&markerPage{challenge: true, siteKey: "key-abc"}); got == nil || got.SiteKey != "key-abc" {
		t.Fatalf("Detect on challenge page = %+v, want challenge with site key", got)
	}
	if got := d.Detect(&markerPage{challenge: true}); got == nil || got.SiteKey != DefaultSiteKey {
		t.Fatalf("Detect without recoverable key = %+v, want default key", got)
	}
	if got := d.Detect(&markerPage{challenge: true, results: true}); got != nil {
		t.Errorf("Detect on a usable listing with a stray captcha-named node = %+v, want nil", got)
	}
	if got := d.Detect(&markerPage{results: true}); got != nil {
		t.Errorf("Detect on a clean listing = %+v, want nil", got)
	}
}

func TestClearedRequiresResults(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		page *markerPage
		want bool
	}{
		{"results and no challenge", &markerPage{results: true}, true},
		{"challenge still up", &markerPage{challenge: true}, false},
		{"results with lingering challenge", &markerPage{challenge: true, results: true}, false},
		{"blank interstitial", &markerPage{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Cleared(tt.page); got != tt.want {
				t.Errorf("Cleared() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWaitClearedGivesUp(t *testing.T) {
	d := NewDetector()

	if d.WaitCleared(context.Background(), &markerPage{}, time.Millisecond, 3) {
		t.Error("WaitCleared succeeded on a page that never shows results")
	}
	if !d.WaitCleared(context.Background(), &markerPage{results: true}, time.Millisecond, 3) {
		t.Error("WaitCleared failed on a usable listing")
	}
}
