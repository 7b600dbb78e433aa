package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/config"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/events"
	"github.com/SaranyaKannan28/summer-internship/handlers"
	"github.com/SaranyaKannan28/summer-internship/logging"
	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/SaranyaKannan28/summer-internship/natsserver"
	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "salary: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == config.DevSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// Salary change events and the live feed need a broker
	var (
		publisher events.Publisher = events.Nop{}
		feedHub   *services.FeedHub
	)
	if cfg.EventsEnabled() {
		natsURL := cfg.NATSURL
		if cfg.NATSEmbedded {
			ns, err := natsserver.New(natsserver.Config{Port: cfg.NATSPort}, log)
			if err != nil {
				return err
			}
			defer ns.Shutdown()
			natsURL = ns.ClientURL()
		}

		nc, err := nats.Connect(natsURL, nats.Name("salary-api"), nats.MaxReconnects(-1))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Close()

		publisher = events.NewNATSPublisher(nc)
		feedHub = services.NewFeedHub(nc, log, m)
		if err := feedHub.Start(); err != nil {
			return err
		}
		go feedHub.Run()
		defer feedHub.Stop()
		log.Info().Str("url", natsURL).Msg("salary events enabled")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(database.NewUserStore(db), tokens, cfg.BcryptCost, log, m)
	salaryService := services.NewSalaryService(database.NewSalaryStore(db), publisher, log, m)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Deps{
		Auth:          authService,
		Salaries:      salaryService,
		FeedHub:       feedHub,
		Metrics:       m,
		Ping:          func(ctx context.Context) error { return database.Ping(ctx, db) },
		Log:           log,
		StaticDir:     cfg.StaticDir,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return shutdown(srv, log)
}

func shutdown(srv *http.Server, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
