package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-platform/internal/auth"
	"booking-platform/internal/booking"
	"booking-platform/internal/config"
	"booking-platform/internal/eventlog"
	"booking-platform/internal/gateway"
	"booking-platform/internal/httpapi"
	"booking-platform/internal/ledger"
	"booking-platform/internal/reconcile"
	"booking-platform/internal/tenant"
	"booking-platform/pkg/logger"
	"booking-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// replayMarkerTTL should comfortably exceed the processor's webhook retry
// horizon (Stripe retries for up to three days).
const replayMarkerTTL = 96 * time.Hour

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	marker, err := utils.NewEventMarker(rdb, replayMarkerTTL)
	if err != nil {
		log.Error("event marker init failed", "err", err)
		os.Exit(1)
	}

	stripeClient, err := gateway.New(cfg.Stripe.SecretKey)
	if err != nil {
		log.Error("stripe client init failed", "err", err)
		os.Exit(1)
	}

	ledgerStore := ledger.NewStore(db)
	bookingStore := booking.NewStore(db)
	tenantStore := tenant.NewStore(db)
	trail := eventlog.NewService(eventlog.NewPostgresRepo(db))

	webhookHandler := &httpapi.WebhookHandler{
		Router: reconcile.NewRouter(),
		Deps: reconcile.Deps{
			Ledger:   ledgerStore,
			Bookings: bookingStore,
			Tenants:  tenantStore,
			Gateway:  stripeClient,
			Log:      log,
		},
		Trail:         trail,
		Replay:        marker,
		SigningSecret: cfg.Stripe.WebhookSecret,
	}
	apiHandlers := httpapi.Handlers{
		Payments: ledgerStore,
		Bookings: bookingStore,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, webhookHandler, apiHandlers, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
