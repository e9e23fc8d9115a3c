package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

// LeadsAPI pulls pre-built lead lists from a keyed marketplace endpoint.
type LeadsAPI struct {
	url    string
	key    string
	host   string
	client *http.Client
}

func NewLeadsAPI(cfg config.ProviderConfig) *LeadsAPI {
	return &LeadsAPI{
		url:    cfg.LeadsAPIURL,
		key:    cfg.LeadsAPIKey,
		host:   cfg.LeadsAPIHost,
		client: newClient(cfg.Proxy, cfg.Timeout),
	}
}

func (l *LeadsAPI) Name() string { return models.SourceLeadsAPI }

func (l *LeadsAPI) Fetch(ctx context.Context, query models.LeadQuery, max int) ([]models.Lead, error) {
	if l.url == "" {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "leads API is not configured", nil)
	}

	payload := map[string]any{
		"query":    query.Category,
		"location": query.Location,
		"limit":    max,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeInternal, "leads API input encoding failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeInternal, "leads API request build failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("x-rapidapi-key", l.key)
	req.Header.Set("x-rapidapi-host", l.host)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "leads API request failed", err)
	}
	defer resp.Body.Close()

	if err := upstreamStatusError("leads API", resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "leads API response read failed", err)
	}

	// The endpoint wraps results either as a bare array or under "data".
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, models.NewAPIError(models.ErrCodeUpstream, "leads API returned malformed payload", err)
		}
		items = wrapped.Data
	}

	leads := make([]models.Lead, 0, len(items))
	for _, item := range items {
		lead := models.Lead{
			Name:    pick(item, "name", "business_name", "title"),
			Phone:   pick(item, "phone", "phone_number"),
			Email:   pick(item, "email", "email_address"),
			Website: pick(item, "website", "url"),
			Address: pick(item, "address", "full_address"),
			Source:  models.SourceLeadsAPI,
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
