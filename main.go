package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/devkhadem/samsungonlineshop/cartstore"
	"github.com/devkhadem/samsungonlineshop/services"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.Level = logrus.InfoLevel
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.Level = level
	}

	if cfg.EnableTracing {
		tp, err := initTracerProvider(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize tracer provider: %v", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down tracer provider: %v", err)
			}
		}()
		mp, err := initMeterProvider(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize meter provider: %v", err)
		}
		defer func() {
			if err := mp.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down meter provider: %v", err)
			}
		}()
		log.WithField("endpoint", cfg.OTLPEndpoint).Info("OpenTelemetry initialized")
	}

	store, closeStore, err := newSlotStore(cfg, log)
	if err != nil {
		log.Fatalf("failed to create %s cart store: %v", cfg.CartStore, err)
	}
	defer closeStore()
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize %s cart store: %v", cfg.CartStore, err)
	}

	carts := services.NewCartService(store, cfg.SlotKey, cfg.NotificationTTL, log,
		services.WithIdleTTL(cfg.SessionIdleTTL),
		services.WithWelcome(cfg.WelcomeDelay),
	)
	defer carts.Close()
	go carts.Run(ctx)

	fe := &frontendServer{
		carts:  carts,
		health: services.NewHealthCheckService(store, log),
		log:    log,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           fe.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Received shutdown signal, initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	log.Infof("storefront listening on %s (cart store: %s)", srv.Addr, cfg.CartStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
}

// newSlotStore builds the slot backend named by cfg.CartStore.
func newSlotStore(cfg Config, log logrus.FieldLogger) (cartstore.ICartStore, func(), error) {
	switch cfg.CartStore {
	case backendRedis:
		addr := cfg.RedisAddr
		// Add the default port only when none is given.
		if !strings.Contains(addr, ":") {
			addr += ":6379"
		}
		s, err := cartstore.NewRedisCartStore(addr, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case backendSQLite:
		s, err := cartstore.NewSQLiteCartStore(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return cartstore.NewLocalCartStore(log), func() {}, nil
	}
}
