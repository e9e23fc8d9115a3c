// Package browser wraps the automation driver behind small interfaces so
// the scraping engine and its sub-components can be exercised against
// fakes. The only real implementation drives Chromium through rod.
package browser

import (
	"context"
	"time"

	"github.com/ysmood/gson"
)

// Browser is one launched browser process. Each scrape run exclusively
// owns one Browser until it closes it.
type Browser interface {
	// NewPage opens a fresh tab.
	NewPage() (Page, error)

	// Close kills the browser process and removes its session profile.
	Close() error
}

// Page is one tab. All operations are side-effecting and must be called
// sequentially; a Page is not safe for concurrent use.
type Page interface {
	// Navigate loads the URL and waits for the DOM to settle.
	Navigate(url string) error

	// URL returns the current navigation URL.
	URL() string

	// HTML returns the rendered page source.
	HTML() (string, error)

	// Eval runs a JS function expression in the page and returns its result.
	Eval(js string) (gson.JSON, error)

	// Elements returns all elements matching the CSS selector without
	// waiting; an empty slice means no match.
	Elements(selector string) ([]Element, error)

	// Screenshot captures the current viewport as PNG.
	Screenshot() ([]byte, error)

	// Context returns a Page whose operations are bound to ctx.
	Context(ctx context.Context) Page

	// Timeout returns a Page whose operations fail after d. Used for
	// fast, non-fatal element lookups.
	Timeout(d time.Duration) Page

	// Close closes the tab.
	Close() error
}

// Element is a handle to one DOM element.
type Element interface {
	// Text returns the element's visible text.
	Text() (string, error)

	// Attribute returns the named attribute, or "" when absent.
	Attribute(name string) (string, error)

	// Click left-clicks the element.
	Click() error

	// Visible reports whether the element is rendered and displayed.
	Visible() bool
}
