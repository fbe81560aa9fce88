package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/work4inventions/financeInsight/internal/actions"
	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/backend"
	"github.com/work4inventions/financeInsight/internal/blob"
	"github.com/work4inventions/financeInsight/internal/cache"
	"github.com/work4inventions/financeInsight/internal/config"
	apphttp "github.com/work4inventions/financeInsight/internal/http"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	// AMQP is optional; without it mutations simply skip event publishing
	var publisher actions.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export events",
				log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	st := store.New(result.Backend, logger)
	svc := actions.NewService(result.Backend, st, publisher, logger)

	var authenticator auth.Authenticator
	switch cfg.AuthMode {
	case "google":
		authenticator = auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	default:
		authenticator = auth.NewDev()
		logger.Warn("Running with dev auth, every visitor shares one local account")
	}

	sessions := auth.NewSessions(1000, cfg.SessionTTL)

	blobs, err := blob.NewFSStore(cfg.BlobDir, "/blobs")
	if err != nil {
		logger.Error("Failed to initialize blob store", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:          ":" + cfg.Port,
		Store:         st,
		Actions:       svc,
		Profiles:      result.Backend,
		Blobs:         blobs,
		Sessions:      sessions,
		Authenticator: authenticator,
		SessionTTL:    cfg.SessionTTL,
		Logger:        logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	cacheManager := cache.NewManager()
	cacheManager.Register(sessions)
	for _, c := range srv.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(10 * time.Minute)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financeinsight server",
			"port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cacheManager.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
