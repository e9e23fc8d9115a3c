package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/leadforge/browser"
)

type stubElement struct {
	text string
	attr map[string]string
}

func (e *stubElement) Text() (string, error) { return e.text, nil }
func (e *stubElement) Attribute(name string) (string, error) {
	return e.attr[name], nil
}
func (e *stubElement) Click() error  { return nil }
func (e *stubElement) Visible() bool { return true }

// stubSite serves canned elements per selector fragment plus a raw page
// source for the fallback scan.
type stubSite struct {
	url      string
	elements map[string][]browser.Element
	source   string
}

func (p *stubSite) Navigate(u string) error { p.url = u; return nil }
func (p *stubSite) URL() string             { return p.url }
func (p *stubSite) HTML() (string, error)   { return p.source, nil }
func (p *stubSite) Eval(string) (gson.JSON, error) {
	return gson.New(nil), nil
}
func (p *stubSite) Elements(sel string) ([]browser.Element, error) {
	for fragment, els := range p.elements {
		if strings.Contains(sel, fragment) {
			return els, nil
		}
	}
	return nil, nil
}
func (p *stubSite) Screenshot() ([]byte, error)          { return nil, nil }
func (p *stubSite) Context(context.Context) browser.Page { return p }
func (p *stubSite) Timeout(time.Duration) browser.Page   { return p }
func (p *stubSite) Close() error                         { return nil }

func TestExtractRequiresPhoneAndEmail(t *testing.T) {
	tests := []struct {
		name       string
		page       *stubSite
		wantLead   bool
		wantReason Reason
	}{
		{
			name: "phone and email accepted",
			page: &stubSite{
				elements: map[string][]browser.Element{
					"phone":  {&stubElement{text: "Call (512) 555-0134"}},
					"mailto": {&stubElement{attr: map[string]string{"href": "mailto:info@acmeplumbing.com"}}},
				},
				source: "<html><body></body></html>",
			},
			wantLead:   true,
			wantReason: ReasonAccepted,
		},
		{
			name: "phone without email rejected",
			page: &stubSite{
				elements: map[string][]browser.Element{
					"phone": {&stubElement{text: "Call (512) 555-0134"}},
				},
				source: "<html><body>Call us today</body></html>",
			},
			wantReason: ReasonMissingEmail,
		},
		{
			name: "email without phone rejected",
			page: &stubSite{
				elements: map[string][]browser.Element{
					"mailto": {&stubElement{attr: map[string]string{"href": "mailto:info@acmeplumbing.com"}}},
				},
				source: "<html><body>Write to us</body></html>",
			},
			wantReason: ReasonMissingPhone,
		},
		{
			name: "no contact info rejected",
			page: &stubSite{
				source: "<html><body>Welcome</body></html>",
			},
			wantReason: ReasonNoContactInfo,
		},
	}

	x := New(0, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, reason := x.Extract(tt.page, "https://acmeplumbing.com")
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
			if tt.wantLead {
				if lead == nil {
					t.Fatal("expected a lead")
				}
				if lead.Phone == "" || lead.Email == "" {
					t.Errorf("accepted lead missing a field: %+v", lead)
				}
			} else if lead != nil {
				t.Errorf("expected nil lead, got %+v", lead)
			}
		})
	}
}

// A missing field found only in the page source still completes the lead.
func TestExtractFillsMissingFieldFromSource(t *testing.T) {
	page := &stubSite{
		elements: map[string][]browser.Element{
			"phone": {&stubElement{text: "Call (512) 555-0134"}},
		},
		source: `<html><body>
			<p>Questions? info@acmeplumbing.com</p>
			<p>1200 Congress Ave, Austin, TX 78701</p>
		</body></html>`,
	}

	x := New(0, nil, nil)
	lead, reason := x.Extract(page, "https://acmeplumbing.com")
	if reason != ReasonAccepted || lead == nil {
		t.Fatalf("lead = %+v, reason = %q", lead, reason)
	}
	if lead.Email != "info@acmeplumbing.com" {
		t.Errorf("Email = %q", lead.Email)
	}
	if lead.Address != "1200 Congress Ave, Austin, TX 78701" {
		t.Errorf("Address = %q, want the street line from the page text", lead.Address)
	}
	if lead.Name != "Acmeplumbing" {
		t.Errorf("Name = %q", lead.Name)
	}
}
