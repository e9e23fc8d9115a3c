package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

func testClient(tokenURL string) *Client {
	return NewClient(config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:5173/callback",
		AuthURL:      "https://accounts.example.com/auth",
		TokenURL:     tokenURL,
		Scopes:       []string{"sheets.readonly", "drive.file"},
	})
}

func TestAuthCodeURL(t *testing.T) {
	u := testClient("").AuthCodeURL("xyz")
	for _, want := range []string{
		"client_id=client-id",
		"response_type=code",
		"state=xyz",
		"scope=sheets.readonly+drive.file",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("AuthCodeURL missing %q: %s", want, u)
		}
	}
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant", "error_description": "bad code"}`))
			return
		}
		w.Write([]byte(`{"access_token": "at", "refresh_token": "rt", "expires_in": 3599}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	token, err := c.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if token.AccessToken != "at" || token.RefreshToken != "rt" {
		t.Errorf("unexpected token: %+v", token)
	}

	_, err = c.Exchange(context.Background(), "wrong")
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != models.ErrCodeUnauthorized {
		t.Errorf("bad code = %v, want UNAUTHORIZED", err)
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "fresh", "expires_in": 3599}`))
	}))
	defer srv.Close()

	token, err := testClient(srv.URL).Refresh(context.Background(), "rt-original")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if token.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q", token.AccessToken)
	}
	if token.RefreshToken != "rt-original" {
		t.Errorf("refresh token not carried over: %q", token.RefreshToken)
	}
}
