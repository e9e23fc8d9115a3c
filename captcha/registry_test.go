package captcha

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/leadforge/browser"
	"github.com/use-agent/leadforge/models"
)

type stubPage struct {
	mu    sync.Mutex
	evals []string
}

func (p *stubPage) Navigate(string) error { return nil }
func (p *stubPage) URL() string           { return "https://www.google.com/search?q=test" }
func (p *stubPage) HTML() (string, error) { return "", nil }
func (p *stubPage) Eval(js string) (gson.JSON, error) {
	p.mu.Lock()
	p.evals = append(p.evals, js)
	p.mu.Unlock()
	return gson.New(nil), nil
}
func (p *stubPage) Elements(string) ([]browser.Element, error) { return nil, nil }
func (p *stubPage) Screenshot() ([]byte, error)                { return nil, nil }
func (p *stubPage) Context(context.Context) browser.Page       { return p }
func (p *stubPage) Timeout(time.Duration) browser.Page         { return p }
func (p *stubPage) Close() error                               { return nil }

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	defer r.Stop()

	resumed := make(chan string, 1)
	page := &stubPage{}
	id := r.Register(models.LeadQuery{RawPrompt: "plumbers in Austin"}, DefaultSiteKey, page,
		func(token string) { resumed <- token },
		func(err error) { t.Errorf("unexpected fail: %v", err) })

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	if err := r.Resolve(id, "tok-123"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	select {
	case token := <-resumed:
		if token != "tok-123" {
			t.Errorf("resumed with token %q", token)
		}
	case <-time.After(time.Second):
		t.Fatal("resume callback never ran")
	}

	page.mu.Lock()
	injected := len(page.evals) > 0
	page.mu.Unlock()
	if !injected {
		t.Error("token was not injected into the page")
	}

	// A consumed session must behave like an unknown one.
	err := r.Resolve(id, "tok-456")
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeSessionNotFound {
		t.Errorf("second Resolve = %v, want SESSION_NOT_FOUND", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after resolve, want 0", r.Len())
	}
}

func TestRegistryResolveUnknownSession(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	defer r.Stop()

	err := r.Resolve("no-such-session", "tok")
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeSessionNotFound {
		t.Errorf("Resolve = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestRegistryExpiry(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, nil)
	defer r.Stop()

	failed := make(chan error, 1)
	r.Register(models.LeadQuery{}, DefaultSiteKey, &stubPage{},
		func(string) { t.Error("expired session must not resume") },
		func(err error) { failed <- err })

	time.Sleep(20 * time.Millisecond)
	r.sweep()

	select {
	case err := <-failed:
		var apiErr *models.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeCaptchaTimeout {
			t.Errorf("fail reason = %v, want CAPTCHA_TIMEOUT", err)
		}
	case <-time.After(time.Second):
		t.Fatal("fail callback never ran")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", r.Len())
	}
}

func TestSolvedKeys(t *testing.T) {
	s := NewSolvedKeys(50 * time.Millisecond)
	defer s.Stop()

	s.Mark("plumbers|austin")
	if !s.Seen("plumbers|austin") {
		t.Error("freshly marked key not seen")
	}
	if s.Seen("bakeries|denver") {
		t.Error("unmarked key reported seen")
	}
	time.Sleep(60 * time.Millisecond)
	if s.Seen("plumbers|austin") {
		t.Error("expired key still seen")
	}
}
