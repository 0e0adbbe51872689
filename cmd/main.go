package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/montpellier/internal/adapters/contactform"
	"github.com/okian/montpellier/internal/adapters/content"
	"github.com/okian/montpellier/internal/adapters/http/api"
	"github.com/okian/montpellier/internal/adapters/http/site"
	"github.com/okian/montpellier/internal/adapters/http/swagger"
	"github.com/okian/montpellier/internal/adapters/imageprobe"
	app "github.com/okian/montpellier/internal/app"
	"github.com/okian/montpellier/internal/config"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is configured from cfg, so it isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
		metrics.WithCustomLabels(cfg.MetricsLabels()),
	)

	var svc *app.Service
	if cfg.MountRelay {
		svc = newRelayService(cfg, loggerInstance)
		if err := svc.Start(ctx); err != nil {
			loggerInstance.Error(ctx, "failed to start contact relay", logger.Error(err))
			return
		}
		defer svc.Stop()
	}

	router, err := newRouter(cfg, svc, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build routes", logger.Error(err))
		return
	}

	// Start system metrics updater
	go metrics.RunSystemUpdater(ctx, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("content_base_url", cfg.BaseURL()),
			logger.Bool("relay_mounted", svc != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newRelayService builds the contact relay from cfg. SMTP is enabled only
// when both credentials are present.
func newRelayService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("relay")),
		app.WithLogPath(cfg.ContactLogPath),
		app.WithSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		app.WithRecipient(cfg.ContactEmail),
	)
}

// newRouter wires middleware, the operational API, the docs and the site.
// svc may be nil, in which case the relay routes are not mounted.
func newRouter(cfg *config.Config, svc *app.Service, log logger.Logger) (chi.Router, error) {
	fetcher, err := content.NewFetcher(cfg.BaseURL(), content.WithTimeout(cfg.FetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("content fetcher: %w", err)
	}
	resolver, err := imageprobe.NewResolver(cfg.BaseURL(),
		imageprobe.WithTimeout(cfg.ProbeTimeout),
		imageprobe.WithPlaceholder(cfg.PlaceholderImage),
	)
	if err != nil {
		return nil, fmt.Errorf("image resolver: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)

	// A typed nil *app.Service must not reach the Relayer interface.
	var (
		relay api.Relayer
		stats api.StatsProvider
	)
	if svc != nil {
		relay, stats = svc, svc
	}
	api.NewServer(relay, stats, log.Named("relay")).Register(r)
	swagger.Register(r)

	fsys := site.PublicFS(cfg.PublicDir)
	builder := site.NewBuilder(fsys, fetcher, resolver,
		site.WithProbeConcurrency(cfg.ProbeConcurrency),
		site.WithLogger(log.Named("site")),
	)
	site.NewHandler(builder, fsys,
		site.WithContactRelay(cfg.ContactRelayURL(),
			contactform.WithTimeout(cfg.SubmitTimeout),
			contactform.WithLogger(log.Named("contactform")),
		),
		site.WithHandlerLogger(log.Named("site")),
	).Register(r)

	return r, nil
}
