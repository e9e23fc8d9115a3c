// Package provider fetches leads from upstream data vendors, as an
// alternative to running the scraping engine.
package provider

import (
	"context"
	"fmt"

	"github.com/use-agent/leadforge/models"
)

// Provider fetches up to max leads for a parsed query from one upstream.
type Provider interface {
	// Name is the source tag stamped onto returned leads.
	Name() string

	// Fetch returns leads for the query. Partial results with nil error
	// are valid; upstream trouble surfaces as *models.APIError.
	Fetch(ctx context.Context, query models.LeadQuery, max int) ([]models.Lead, error)
}

// Dispatcher routes a source name to its provider.
type Dispatcher struct {
	providers map[string]Provider
}

func NewDispatcher(providers ...Provider) *Dispatcher {
	d := &Dispatcher{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		d.providers[p.Name()] = p
	}
	return d
}

// Lookup returns the provider registered for source.
func (d *Dispatcher) Lookup(source string) (Provider, error) {
	p, ok := d.providers[source]
	if !ok {
		return nil, models.NewAPIError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown lead source %q", source), nil)
	}
	return p, nil
}

// pick returns the first non-empty string value among keys in item.
func pick(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
