// Package oauth is the identity-provider glue for spreadsheet access:
// building the consent URL, exchanging authorization codes, and
// refreshing access tokens. Tokens belong to the end user and are never
// stored server-side.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

// Token is the provider's token grant.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type Client struct {
	cfg    config.OAuthConfig
	client *http.Client
}

func NewClient(cfg config.OAuthConfig) *Client {
	return &Client{cfg: cfg, client: &http.Client{Timeout: 30 * time.Second}}
}

// AuthCodeURL builds the consent page URL for the configured scopes.
func (c *Client) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(c.cfg.Scopes, " "))
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	if state != "" {
		q.Set("state", state)
	}
	return c.cfg.AuthURL + "?" + q.Encode()
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")
	return c.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")

	token, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, err
	}
	// The provider omits the refresh token on refresh grants; keep the
	// one the caller already holds.
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeInternal, "token request build failed", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "identity provider unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "token response read failed", err)
	}
	if resp.StatusCode >= 400 {
		var detail struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(body, &detail)
		msg := detail.ErrorDescription
		if msg == "" {
			msg = fmt.Sprintf("identity provider returned HTTP %d", resp.StatusCode)
		}
		return nil, models.NewAPIError(models.ErrCodeUnauthorized, msg, nil)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "token response decode failed", err)
	}
	if token.AccessToken == "" {
		return nil, models.NewAPIError(models.ErrCodeUpstream, "identity provider returned no access token", nil)
	}
	return &token, nil
}
