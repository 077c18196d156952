// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carterperez-dev/smartlink/internal/admin"
	"github.com/carterperez-dev/smartlink/internal/analytics"
	"github.com/carterperez-dev/smartlink/internal/audit"
	"github.com/carterperez-dev/smartlink/internal/auth"
	"github.com/carterperez-dev/smartlink/internal/config"
	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
	"github.com/carterperez-dev/smartlink/internal/health"
	"github.com/carterperez-dev/smartlink/internal/jobs"
	"github.com/carterperez-dev/smartlink/internal/middleware"
	"github.com/carterperez-dev/smartlink/internal/page"
	"github.com/carterperez-dev/smartlink/internal/server"
	"github.com/carterperez-dev/smartlink/internal/subdomain"
	"github.com/carterperez-dev/smartlink/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.String("generate-keys", "", "write a new ES256 private key to this path and exit")
	flag.Parse()

	if *generateKeys != "" {
		if err := auth.GenerateKeyPair(*generateKeys); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("private key written to", *generateKeys)
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"launch_mode", cfg.Entitlement.LaunchMode,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := core.NewMetrics(registry)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token service initialized",
		"algorithm", "ES256",
		"key_id", tokens.KeyID(),
	)

	planStore := entitlement.NewCachedStore(
		entitlement.NewRepository(db.DB),
		redis.Client,
		cfg.Entitlement.CacheTTL,
		logger,
		metrics,
	)
	resolver := entitlement.NewResolver(planStore, entitlement.ResolverOptions{
		LaunchMode: cfg.Entitlement.LaunchMode,
		Logger:     logger,
		Metrics:    metrics,
	})

	geo, err := analytics.NewGeoResolver(cfg.Geo, logger)
	if err != nil {
		return err
	}
	analyticsSvc := analytics.NewService(analytics.NewRepository(db.DB), geo, logger)

	pageSvc := page.NewService(db.DB, page.NewRepository(db.DB), resolver, analyticsSvc)
	subdomainSvc := subdomain.NewService(db.DB, subdomain.NewRepository(db.DB), pageSvc, resolver)
	entitlementSvc := entitlement.NewService(planStore, resolver, pageSvc, subdomainSvc, logger)

	// subdomains reference pages, so they are removed first
	userSvc := user.NewService(db.DB, user.NewRepository(db.DB), entitlementSvc, subdomainSvc, pageSvc)

	if err := entitlementSvc.Bootstrap(ctx, userSvc); err != nil {
		return err
	}

	authSvc := auth.NewService(tokens, userSvc, cfg.Owner.Email, logger)
	auditSvc := audit.NewService(audit.NewRepository(db.DB), logger, metrics)
	adminSvc := admin.NewService(admin.ServiceConfig{
		Repo:       admin.NewRepository(db.DB),
		Users:      userSvc,
		Pages:      pageSvc,
		Subdomains: subdomainSvc,
		Audit:      auditSvc,
		Logger:     logger,
	})

	scheduler := jobs.NewScheduler(logger)
	reconciler := jobs.NewQuotaReconciler(jobs.NewUsageRepository(db.DB), resolver, metrics, logger)
	if cfg.Jobs.QuotaReconcileSchedule != "" {
		if err := scheduler.Add(cfg.Jobs.QuotaReconcileSchedule, reconciler); err != nil {
			return err
		}
	}

	healthHandler := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, metrics))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", tokens.JWKSHandler())
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	guard := middleware.NewGuard(tokens, userSvc, metrics)
	tiered := middleware.TieredRateLimiter(redis.Client, middleware.DefaultTiers)
	authenticator := func(next http.Handler) http.Handler {
		return guard.Authenticator(tiered(next))
	}

	pageHandler := page.NewHandler(pageSvc)
	subdomainHandler := subdomain.NewHandler(subdomainSvc)
	entitlementHandler := entitlement.NewHandler(entitlementSvc)
	auditHandler := audit.NewHandler(auditSvc)
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Service:    adminSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	router.Route("/v1", func(r chi.Router) {
		pageHandler.RegisterPublicRoutes(r)

		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)

		pageHandler.RegisterRoutes(r, authenticator)
		subdomainHandler.RegisterRoutes(r, authenticator)
		entitlementHandler.RegisterRoutes(r, authenticator)

		subdomainHandler.RegisterAdminRoutes(r, authenticator, guard.RequireModerator)
		entitlementHandler.RegisterAdminRoutes(r, authenticator, guard.RequireAdmin)
		auditHandler.RegisterRoutes(r, authenticator, guard.RequireAdmin)
		adminHandler.RegisterRoutes(r, authenticator, admin.Gates{
			Moderator: guard.RequireModerator,
			Admin:     guard.RequireAdmin,
			Owner:     guard.RequireOwner,
		})
	})

	scheduler.Start()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler stop error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
