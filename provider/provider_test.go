package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

func TestActorFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title": "Acme Plumbing", "phone": "+1 512-555-0134", "website": "https://acmeplumbing.com", "address": "123 Main St"},
			{"title": "", "phone": "", "email": ""},
			{"name": "Austin Drains", "phoneUnformatted": "5125550188"}
		]`))
	}))
	defer srv.Close()

	actor := NewActor(config.ProviderConfig{
		ActorBaseURL: srv.URL,
		ActorID:      "compass~crawler-google-places",
		ActorToken:   "secret",
		Timeout:      5 * time.Second,
	})

	leads, err := actor.Fetch(context.Background(), models.LeadQuery{Category: "plumbers", Location: "Austin"}, 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2 (empty item skipped)", len(leads))
	}
	if leads[0].Name != "Acme Plumbing" || leads[0].Source != models.SourceActor {
		t.Errorf("unexpected first lead: %+v", leads[0])
	}
	if leads[1].Phone != "5125550188" {
		t.Errorf("phoneUnformatted fallback not applied: %+v", leads[1])
	}
}

func TestActorFetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	actor := NewActor(config.ProviderConfig{ActorBaseURL: srv.URL, ActorID: "x", Timeout: 5 * time.Second})
	_, err := actor.Fetch(context.Background(), models.LeadQuery{}, 10)
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeUnauthorized {
		t.Errorf("Fetch = %v, want UNAUTHORIZED", err)
	}
}

func TestLeadsAPIFetchWrappedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-rapidapi-key") != "key123" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"data": [{"business_name": "Denver Bakes", "phone_number": "3035550101"}]}`))
	}))
	defer srv.Close()

	api := NewLeadsAPI(config.ProviderConfig{
		LeadsAPIURL:  srv.URL,
		LeadsAPIKey:  "key123",
		LeadsAPIHost: "leads.example",
		Timeout:      5 * time.Second,
	})

	leads, err := api.Fetch(context.Background(), models.LeadQuery{Category: "bakeries", Location: "Denver"}, 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "Denver Bakes" || leads[0].Source != models.SourceLeadsAPI {
		t.Errorf("unexpected leads: %+v", leads)
	}
}

func TestDispatcherLookup(t *testing.T) {
	d := NewDispatcher(NewActor(config.ProviderConfig{}), NewLeadsAPI(config.ProviderConfig{}))

	if _, err := d.Lookup(models.SourceActor); err != nil {
		t.Errorf("Lookup(actor): %v", err)
	}
	_, err := d.Lookup("nonsense")
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeInvalidInput {
		t.Errorf("Lookup(nonsense) = %v, want INVALID_INPUT", err)
	}
}
