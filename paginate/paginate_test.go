package paginate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/leadforge/browser"
)

type fakeElement struct {
	text    string
	visible bool
	onClick func()
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }
func (e *fakeElement) Attribute(string) (string, error) {
	return "", nil
}
func (e *fakeElement) Click() error {
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}
func (e *fakeElement) Visible() bool { return e.visible }

type fakePage struct {
	url          string
	html         string
	scrollHeight int
	elements     map[string][]browser.Element
}

func (p *fakePage) Navigate(u string) error { p.url = u; return nil }
func (p *fakePage) URL() string             { return p.url }
func (p *fakePage) HTML() (string, error)   { return p.html, nil }
func (p *fakePage) Eval(js string) (gson.JSON, error) {
	if strings.Contains(js, "scrollTo") {
		return gson.New(nil), nil
	}
	return gson.New(p.scrollHeight), nil
}
func (p *fakePage) Elements(sel string) ([]browser.Element, error) {
	return p.elements[sel], nil
}
func (p *fakePage) Screenshot() ([]byte, error)          { return nil, nil }
func (p *fakePage) Context(context.Context) browser.Page { return p }
func (p *fakePage) Timeout(time.Duration) browser.Page   { return p }
func (p *fakePage) Close() error                         { return nil }

func TestAdvanceNextPage(t *testing.T) {
	p := &fakePage{url: "https://www.google.com/search?q=plumbers"}
	p.elements = map[string][]browser.Element{
		"a#pnnext": {&fakeElement{text: "Next", visible: true, onClick: func() {
			p.url = "https://www.google.com/search?q=plumbers&start=10"
		}}},
	}

	d := NewDriver(5, 0, nil)
	strategy, ok := d.Advance(p)
	if !ok || strategy != StrategyNextPage {
		t.Fatalf("Advance = (%q, %v), want (next-page, true)", strategy, ok)
	}
}

func TestAdvanceLoadMoreOnly(t *testing.T) {
	p := &fakePage{url: "https://directory.example.net/plumbers", html: "<html>short</html>"}
	p.elements = map[string][]browser.Element{
		"button": {&fakeElement{text: "Load More", visible: true, onClick: func() {
			p.html = p.html + strings.Repeat("<div>result</div>", 20)
		}}},
	}

	d := NewDriver(5, 0, nil)
	strategy, ok := d.Advance(p)
	if !ok || strategy != StrategyLoadMore {
		t.Fatalf("Advance = (%q, %v), want (load-more, true)", strategy, ok)
	}
}

func TestAdvanceClickWithoutEffectFallsThrough(t *testing.T) {
	// A next link that never changes the URL must not count as progress.
	p := &fakePage{url: "https://www.google.com/search?q=plumbers", html: "<html></html>"}
	p.elements = map[string][]browser.Element{
		"a#pnnext": {&fakeElement{text: "Next", visible: true}},
	}

	d := NewDriver(2, 0, nil)
	strategy, ok := d.Advance(p)
	if ok || strategy != StrategyNone {
		t.Fatalf("Advance = (%q, %v), want (none, false)", strategy, ok)
	}
}

func TestAdvanceExhausted(t *testing.T) {
	p := &fakePage{url: "https://www.google.com/search?q=plumbers", html: "<html></html>"}
	p.elements = map[string][]browser.Element{}

	d := NewDriver(2, 0, nil)
	strategy, ok := d.Advance(p)
	if ok || strategy != StrategyNone {
		t.Fatalf("Advance = (%q, %v), want (none, false)", strategy, ok)
	}
}
