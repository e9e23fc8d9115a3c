package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/use-agent/leadforge/api/handler"
	"github.com/use-agent/leadforge/api/middleware"
	"github.com/use-agent/leadforge/captcha"
	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/export"
	"github.com/use-agent/leadforge/mail"
	"github.com/use-agent/leadforge/oauth"
	"github.com/use-agent/leadforge/provider"
	"github.com/use-agent/leadforge/scrape"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Scraper   *scrape.Service
	Registry  *captcha.Registry
	Providers *provider.Dispatcher
	Sheets    *export.SheetsClient
	Mail      *mail.Bulk
	OAuth     *oauth.Client
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-API-Key")
	r.Use(cors.New(corsCfg))

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(deps.Scraper, deps.Registry, deps.StartTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Lead generation
	protected.POST("/leads", handler.GenerateLeads(deps.Scraper, deps.Providers))
	protected.GET("/leads/stream", handler.StreamLeads(deps.Scraper))

	// Captcha handoff
	protected.POST("/captcha/resolve/:sessionId", handler.ResolveCaptcha(deps.Registry))
	protected.GET("/captcha/status/:sessionId", handler.CaptchaStatus(deps.Scraper))

	// Export
	protected.POST("/export/csv", handler.ExportCSV())
	protected.POST("/export/google-sheets", handler.ExportSheets(deps.Sheets))
	protected.POST("/export/google-sheets/list", handler.SheetsList(deps.Sheets))
	protected.POST("/export/google-sheets/fetch", handler.SheetsFetch(deps.Sheets))

	// Email
	protected.POST("/email/send", handler.SendEmail(deps.Mail))

	// Identity provider glue
	protected.GET("/auth/url", handler.AuthURL(deps.OAuth))
	protected.POST("/auth/exchange", handler.ExchangeToken(deps.OAuth))
	protected.POST("/auth/refresh", handler.RefreshToken(deps.OAuth))

	return r
}
