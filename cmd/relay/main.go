// Command relay runs the contact relay on its own, without the site pages.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/montpellier/internal/adapters/http/api"
	"github.com/okian/montpellier/internal/adapters/http/swagger"
	app "github.com/okian/montpellier/internal/app"
	"github.com/okian/montpellier/internal/config"
	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	addr := flag.String("addr", "", "Listen address (default: config addr)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithSubsystem("relay"),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
		metrics.WithCustomLabels(cfg.MetricsLabels()),
	)

	svc := app.New(
		app.WithLogger(log.Named("relay")),
		app.WithLogPath(cfg.ContactLogPath),
		app.WithSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		app.WithRecipient(cfg.ContactEmail),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start contact relay", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	api.NewServer(svc, svc, log.Named("relay")).Register(r)
	swagger.Register(r)

	go metrics.RunSystemUpdater(ctx, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting contact relay", logger.String("addr", cfg.Addr), logger.Bool("smtp", svc.SMTPEnabled()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "relay shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "contact relay stopped")
}
