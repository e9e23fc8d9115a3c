package prompt

import (
	"errors"
	"testing"

	"github.com/use-agent/leadforge/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		count    int
		category string
		location string
	}{
		{"generate leads of", "generate 20 leads of plumbers in Austin", 20, "plumbers", "Austin"},
		{"generate x leads in", "generate 10 plumbers leads in Austin", 10, "plumbers", "Austin"},
		{"bare count leads of", "30 leads of roofers in Dallas", 30, "roofers", "Dallas"},
		{"find n x in y", "find 5 bakeries in Denver", 5, "bakeries", "Denver"},
		{"catch-all default count", "bakeries in Denver", 50, "bakeries", "Denver"},
		{"multi-word category", "generate 3 leads of tattoo parlors in New York", 3, "tattoo parlors", "New York"},
		{"multi-word location", "coffee shops in San Francisco", 50, "coffee shops", "San Francisco"},
		{"case insensitive", "Generate 7 Leads of Dentists in Miami", 7, "Dentists", "Miami"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.prompt)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.prompt, err)
			}
			if q.Count != tt.count {
				t.Errorf("count = %d, want %d", q.Count, tt.count)
			}
			if q.Category != tt.category {
				t.Errorf("category = %q, want %q", q.Category, tt.category)
			}
			if q.Location != tt.location {
				t.Errorf("location = %q, want %q", q.Location, tt.location)
			}
			if q.RawPrompt != tt.prompt {
				t.Errorf("raw prompt = %q, want %q", q.RawPrompt, tt.prompt)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, p := range []string{"", "   ", "plumbers", "generate leads"} {
		t.Run("prompt="+p, func(t *testing.T) {
			_, err := Parse(p)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", p)
			}
			var apiErr *models.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error is %T, want *models.APIError", err)
			}
			if apiErr.Code != models.ErrCodeInvalidPrompt {
				t.Errorf("error code = %q, want %q", apiErr.Code, models.ErrCodeInvalidPrompt)
			}
		})
	}
}

func TestParse_CountNeverReDerived(t *testing.T) {
	// "generate N" wins over other numbers in the prompt.
	q, err := Parse("generate 12 leads of 24 hour gyms in Chicago")
	if err != nil {
		t.Fatal(err)
	}
	if q.Count != 12 {
		t.Errorf("count = %d, want 12", q.Count)
	}
	if q.Category != "24 hour gyms" {
		t.Errorf("category = %q, want %q", q.Category, "24 hour gyms")
	}
}
