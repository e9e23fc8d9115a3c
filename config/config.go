package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Captcha   CaptchaConfig
	Providers ProviderConfig
	Export    ExportConfig
	Mail      MailConfig
	OAuth     OAuthConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// CORSOrigins lists allowed origins for browser callers.
	CORSOrigins []string
}

// BrowserConfig controls the per-run browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. Headed mode is
	// required when a human solves challenges in the browser window itself.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgent overrides the browser user agent string.
	UserAgent string

	// ProfileDir is the parent directory for per-session isolated browser
	// profiles. Empty means the system temp dir.
	ProfileDir string

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string
}

// ScraperConfig controls the self-driven scraping engine.
type ScraperConfig struct {
	// RunTimeout is the hard deadline for one scrape run.
	RunTimeout time.Duration // default: 10m

	// SettleDelay is the fixed wait after navigating to a destination
	// page before reading it.
	SettleDelay time.Duration // default: 3s

	// MaxPages caps listing pages per run.
	MaxPages int // default: 20

	// MaxScrollAttempts caps infinite-scroll retries per pagination attempt.
	MaxScrollAttempts int // default: 5

	// MaxSitesPerRun caps destination pages visited per run.
	MaxSitesPerRun int // default: 100

	// VisitInterval is the minimum spacing between destination page visits.
	VisitInterval time.Duration // default: 500ms

	// BlockedResourceTypes lists resource types not loaded on destination
	// pages. default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// VerifyMX enables DNS MX-record plausibility checks on extracted
	// email domains. Does network I/O; off by default.
	VerifyMX bool
}

// Captcha handling modes.
const (
	CaptchaModeHandoff = "handoff"
	CaptchaModeBlock   = "block"
)

// CaptchaConfig controls challenge handling.
type CaptchaConfig struct {
	// Mode is "handoff" (suspend the run, resume via the registry) or
	// "block" (poll in-process until cleared). default: "handoff".
	Mode string

	// PollInterval is the blocking-wait poll interval.
	PollInterval time.Duration // default: 1s

	// MaxPollAttempts bounds the blocking wait (attempts * interval total).
	MaxPollAttempts int // default: 60

	// SessionTTL is how long a registered pending session may stay
	// unresolved before it is purged and its run failed.
	SessionTTL time.Duration // default: 3m

	// SolvedTTL is how long a solved category+location key is remembered.
	SolvedTTL time.Duration // default: 24h
}

// ProviderConfig holds settings for the hosted-actor and leads-API providers.
type ProviderConfig struct {
	// ActorBaseURL is the hosted scraping platform API root.
	ActorBaseURL string // default: "https://api.apify.com/v2"

	// ActorID identifies the scraping actor to run.
	ActorID string // default: "compass~crawler-google-places"

	// ActorToken authenticates against the actor platform.
	ActorToken string

	// LeadsAPIURL is the third-party leads endpoint.
	LeadsAPIURL string

	// LeadsAPIKey and LeadsAPIHost authenticate the leads endpoint.
	LeadsAPIKey  string
	LeadsAPIHost string

	// Timeout is the deadline for one provider call.
	Timeout time.Duration // default: 60s

	// Proxy optionally routes provider traffic.
	Proxy string
}

// ExportConfig controls spreadsheet and CSV export.
type ExportConfig struct {
	// SheetsBaseURL is the spreadsheet service API root.
	SheetsBaseURL string // default: "https://sheets.googleapis.com/v4"

	// DriveBaseURL is the file service API root (list/create spreadsheets).
	DriveBaseURL string // default: "https://www.googleapis.com/drive/v3"

	// Timeout is the deadline for one export call.
	Timeout time.Duration // default: 30s
}

// MailConfig controls the outbound mail relay.
type MailConfig struct {
	SMTPHost string // default: "smtp.gmail.com"
	SMTPPort int    // default: 587
	Username string
	Password string

	// SendDelay spaces out consecutive sends in a bulk request.
	SendDelay time.Duration // default: 4s
}

// OAuthConfig controls the identity-provider glue.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string // default: "https://accounts.google.com/o/oauth2/v2/auth"
	TokenURL     string // default: "https://oauth2.googleapis.com/token"
	Scopes       []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        envOr("LEADFORGE_HOST", "0.0.0.0"),
			Port:        envIntOr("LEADFORGE_PORT", 8080),
			Mode:        envOr("LEADFORGE_MODE", "release"),
			CORSOrigins: envSliceOr("LEADFORGE_CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("LEADFORGE_HEADLESS", true),
			NoSandbox:    envBoolOr("LEADFORGE_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("LEADFORGE_BROWSER_BIN"),
			UserAgent:    os.Getenv("LEADFORGE_USER_AGENT"),
			ProfileDir:   os.Getenv("LEADFORGE_PROFILE_DIR"),
			DefaultProxy: os.Getenv("LEADFORGE_PROXY"),
		},
		Scraper: ScraperConfig{
			RunTimeout:        envDurationOr("LEADFORGE_RUN_TIMEOUT", 10*time.Minute),
			SettleDelay:       envDurationOr("LEADFORGE_SETTLE_DELAY", 3*time.Second),
			MaxPages:          envIntOr("LEADFORGE_MAX_PAGES", 20),
			MaxScrollAttempts: envIntOr("LEADFORGE_MAX_SCROLL_ATTEMPTS", 5),
			MaxSitesPerRun:    envIntOr("LEADFORGE_MAX_SITES", 100),
			VisitInterval:     envDurationOr("LEADFORGE_VISIT_INTERVAL", 500*time.Millisecond),
			BlockedResourceTypes: envSliceOr("LEADFORGE_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			VerifyMX: envBoolOr("LEADFORGE_VERIFY_MX", false),
		},
		Captcha: CaptchaConfig{
			Mode:            envOr("LEADFORGE_CAPTCHA_MODE", "handoff"),
			PollInterval:    envDurationOr("LEADFORGE_CAPTCHA_POLL_INTERVAL", time.Second),
			MaxPollAttempts: envIntOr("LEADFORGE_CAPTCHA_POLL_ATTEMPTS", 60),
			SessionTTL:      envDurationOr("LEADFORGE_CAPTCHA_SESSION_TTL", 3*time.Minute),
			SolvedTTL:       envDurationOr("LEADFORGE_CAPTCHA_SOLVED_TTL", 24*time.Hour),
		},
		Providers: ProviderConfig{
			ActorBaseURL: envOr("LEADFORGE_ACTOR_BASE_URL", "https://api.apify.com/v2"),
			ActorID:      envOr("LEADFORGE_ACTOR_ID", "compass~crawler-google-places"),
			ActorToken:   os.Getenv("LEADFORGE_ACTOR_TOKEN"),
			LeadsAPIURL:  os.Getenv("LEADFORGE_LEADS_API_URL"),
			LeadsAPIKey:  os.Getenv("LEADFORGE_LEADS_API_KEY"),
			LeadsAPIHost: os.Getenv("LEADFORGE_LEADS_API_HOST"),
			Timeout:      envDurationOr("LEADFORGE_PROVIDER_TIMEOUT", 60*time.Second),
			Proxy:        os.Getenv("LEADFORGE_PROVIDER_PROXY"),
		},
		Export: ExportConfig{
			SheetsBaseURL: envOr("LEADFORGE_SHEETS_BASE_URL", "https://sheets.googleapis.com/v4"),
			DriveBaseURL:  envOr("LEADFORGE_DRIVE_BASE_URL", "https://www.googleapis.com/drive/v3"),
			Timeout:       envDurationOr("LEADFORGE_EXPORT_TIMEOUT", 30*time.Second),
		},
		Mail: MailConfig{
			SMTPHost:  envOr("LEADFORGE_SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:  envIntOr("LEADFORGE_SMTP_PORT", 587),
			Username:  os.Getenv("LEADFORGE_SMTP_USER"),
			Password:  os.Getenv("LEADFORGE_SMTP_PASS"),
			SendDelay: envDurationOr("LEADFORGE_MAIL_SEND_DELAY", 4*time.Second),
		},
		OAuth: OAuthConfig{
			ClientID:     os.Getenv("LEADFORGE_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("LEADFORGE_OAUTH_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("LEADFORGE_OAUTH_REDIRECT_URI"),
			AuthURL:      envOr("LEADFORGE_OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			TokenURL:     envOr("LEADFORGE_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			Scopes: envSliceOr("LEADFORGE_OAUTH_SCOPES", []string{
				"https://www.googleapis.com/auth/spreadsheets",
				"https://www.googleapis.com/auth/drive",
				"openid", "email", "profile",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("LEADFORGE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("LEADFORGE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LEADFORGE_RATE_RPS", 5.0),
			Burst:             envIntOr("LEADFORGE_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("LEADFORGE_LOG_LEVEL", "info"),
			Format: envOr("LEADFORGE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
