package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

// Actor runs a hosted place-crawler actor synchronously and maps its
// dataset items to leads.
type Actor struct {
	baseURL string
	actorID string
	token   string
	client  *http.Client
}

func NewActor(cfg config.ProviderConfig) *Actor {
	return &Actor{
		baseURL: cfg.ActorBaseURL,
		actorID: cfg.ActorID,
		token:   cfg.ActorToken,
		client:  newClient(cfg.Proxy, cfg.Timeout),
	}
}

func (a *Actor) Name() string { return models.SourceActor }

func (a *Actor) Fetch(ctx context.Context, query models.LeadQuery, max int) ([]models.Lead, error) {
	input := map[string]any{
		"searchStringsArray":        []string{query.Category},
		"locationQuery":             query.Location,
		"maxCrawledPlacesPerSearch": max,
		"language":                  "en",
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeInternal, "actor input encoding failed", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		a.baseURL, url.PathEscape(a.actorID), url.QueryEscape(a.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeInternal, "actor request build failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", chromeUA)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "actor request failed", err)
	}
	defer resp.Body.Close()

	if err := upstreamStatusError("actor", resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 50*1024*1024))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "actor response read failed", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "actor returned malformed dataset", err)
	}

	leads := make([]models.Lead, 0, len(items))
	for _, item := range items {
		lead := models.Lead{
			Name:    pick(item, "title", "name"),
			Phone:   pick(item, "phone", "phoneUnformatted"),
			Email:   pick(item, "email"),
			Website: pick(item, "website", "url"),
			Address: pick(item, "address", "street"),
			Source:  models.SourceActor,
		}
		if lead.Name == "" && lead.Phone == "" && lead.Email == "" {
			continue
		}
		leads = append(leads, lead)
		if len(leads) >= max {
			break
		}
	}
	return leads, nil
}

// upstreamStatusError maps vendor HTTP failures onto API error codes.
func upstreamStatusError(vendor string, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.NewAPIError(models.ErrCodeUnauthorized,
			fmt.Sprintf("%s credentials rejected", vendor), nil)
	case status == http.StatusNotFound:
		return models.NewAPIError(models.ErrCodeUpstream,
			fmt.Sprintf("%s endpoint not found", vendor), nil)
	case status >= 400:
		return models.NewAPIError(models.ErrCodeUpstream,
			fmt.Sprintf("%s returned HTTP %d", vendor, status), nil)
	}
	return nil
}
