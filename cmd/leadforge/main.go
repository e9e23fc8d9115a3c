package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/use-agent/leadforge/api"
	"github.com/use-agent/leadforge/captcha"
	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/export"
	"github.com/use-agent/leadforge/mail"
	"github.com/use-agent/leadforge/oauth"
	"github.com/use-agent/leadforge/provider"
	"github.com/use-agent/leadforge/scrape"
	"github.com/use-agent/leadforge/verify"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	_ = godotenv.Load()
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("leadforge starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"captchaMode", cfg.Captcha.Mode,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Captcha handoff plumbing ─────────────────────────────────
	solved := captcha.NewSolvedKeys(cfg.Captcha.SolvedTTL)
	defer solved.Stop()
	registry := captcha.NewRegistry(cfg.Captcha.SessionTTL, slog.Default())
	defer registry.Stop()

	// ── 4. Scraping engine ──────────────────────────────────────────
	var verifier *verify.MXChecker
	if cfg.Scraper.VerifyMX {
		verifier = verify.NewMXChecker(slog.Default())
	}
	svc := scrape.NewService(cfg.Scraper, cfg.Browser, cfg.Captcha,
		registry, solved, verifier, nil, slog.Default())
	defer svc.Stop()

	// ── 5. Alternative lead providers ───────────────────────────────
	providers := provider.NewDispatcher(
		provider.NewActor(cfg.Providers),
		provider.NewLeadsAPI(cfg.Providers),
	)

	// ── 6. Export, mail and identity glue ───────────────────────────
	sheets := export.NewSheetsClient(cfg.Export)
	bulk := mail.NewBulk(mail.NewSMTPSender(cfg.Mail), cfg.Mail.SendDelay, slog.Default())
	oauthClient := oauth.NewClient(cfg.OAuth)

	// ── 7. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(cfg, api.Deps{
		Scraper:   svc,
		Registry:  registry,
		Providers: providers,
		Sheets:    sheets,
		Mail:      bulk,
		OAuth:     oauthClient,
		StartTime: time.Now(),
	})

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete. Suspended captcha
	// runs are failed by the registry teardown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("leadforge stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
