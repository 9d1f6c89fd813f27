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
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/business"
	"github.com/carterperez-dev/debt-manager/internal/changelog"
	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/dashboard"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/export"
	"github.com/carterperez-dev/debt-manager/internal/finance"
	"github.com/carterperez-dev/debt-manager/internal/health"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/server"
	"github.com/carterperez-dev/debt-manager/internal/team"
	"github.com/carterperez-dev/debt-manager/internal/user"
	"github.com/carterperez-dev/debt-manager/migrations"
)

const (
	drainDelay = 5 * time.Second

	authRequestsPerMinute = 10
	authBurst             = 5

	// A shop's members often share one address.
	clientQuotaFactor = 3

	tokenCleanupInterval = time.Hour
	tokenRetention       = 24 * time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	var err error
	if *genKeys {
		err = generateKeys(*configPath)
	} else {
		err = run(*configPath)
	}

	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return fmt.Errorf("generate keys: %w", err)
	}

	slog.Info("key pair written",
		"private", cfg.JWT.PrivateKeyPath,
		"public", cfg.JWT.PublicKeyPath,
	)
	return nil
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
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled && cfg.Otel.Endpoint != "" {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := core.Migrate(ctx, db.DB, migrations.FS); err != nil {
		return err
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	kv := core.NewKV(redis.Client)
	mailer := core.LogMailer{Logger: logger}
	invalidator := dashboard.NewInvalidator(kv)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)

	businessSvc := business.NewService(business.NewRepository(db.DB), userSvc)
	businessHandler := business.NewHandler(businessSvc)
	userHandler := user.NewHandler(userSvc, businessSvc)

	teamSvc := team.NewService(
		team.NewRepository(db.DB),
		userSvc,
		mailer,
		invalidator,
		cfg.Invitations,
	)
	teamHandler := team.NewHandler(teamSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		kv,
		mailer,
		teamSvc,
		auth.Options{
			VerificationTTL: cfg.Verification.TTL,
			ResendCooldown:  cfg.Verification.ResendCooldown,
			VerifyURL:       cfg.Verification.VerifyURL,
		},
	)
	authHandler := auth.NewHandler(authSvc)

	customerSvc := customer.NewService(customer.NewRepository(db.DB))
	customerHandler := customer.NewHandler(customerSvc)

	debtSvc := debt.NewService(debt.NewRepository(db.DB), customerSvc, invalidator)
	debtHandler := debt.NewHandler(debtSvc)

	financeHandler := finance.NewHandler(
		finance.NewService(finance.NewRepository(db.DB)),
	)

	dashboardHandler := dashboard.NewHandler(
		dashboard.NewService(debtSvc, userSvc, kv, cfg.Dashboard.CacheTTL),
	)

	exportHandler := export.NewHandler(
		export.NewService(debtSvc, customerSvc, businessSvc),
	)

	changelogHandler := changelog.NewHandler(changelog.NewRepository(db.DB))

	healthHandler := health.NewHandler(
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
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))

	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(db.DB.DB, "debt_manager"),
			core.NewPoolCollector(redis.Client, "debt_manager"),
		)
		router.Use(middleware.NewMetrics(registry).Handler)
	}

	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: redis_rate.Limit{
				Rate:   cfg.RateLimit.Requests * clientQuotaFactor,
				Burst:  cfg.RateLimit.Burst * clientQuotaFactor,
				Period: cfg.RateLimit.Window,
			},
			KeyFunc:  middleware.KeyByClient,
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(auth.NewVerifier(jwtManager, userSvc, kv))
	memberLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: redis_rate.Limit{
			Rate:   cfg.RateLimit.Requests,
			Burst:  cfg.RateLimit.Burst,
			Period: cfg.RateLimit.Window,
		},
		PerRole: middleware.RoleLimits(
			cfg.RateLimit.RoleRequests,
			cfg.RateLimit.Window,
			cfg.RateLimit.Burst,
		),
		KeyFunc:  middleware.KeyByActor,
		FailOpen: true,
	}).Handler
	businessScope := middleware.BusinessScope(userSvc)
	scope := func(next http.Handler) http.Handler {
		return businessScope(memberLimiter(next))
	}

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(authRequestsPerMinute, authBurst),
		KeyFunc:  middleware.KeyByActorAndRoute,
		FailOpen: true,
	}).Handler

	sendLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerHour(
			cfg.Invitations.SendsPerHour,
			cfg.Invitations.SendsBurst,
		),
		KeyFunc:  middleware.KeyByBusiness,
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, authLimiter)
		userHandler.RegisterRoutes(r, authenticator)
		businessHandler.RegisterRoutes(r, authenticator)
		customerHandler.RegisterRoutes(r, authenticator, scope)
		debtHandler.RegisterRoutes(r, authenticator, scope)
		teamHandler.RegisterRoutes(r, authenticator, scope, sendLimiter)
		financeHandler.RegisterRoutes(r, authenticator, scope)
		dashboardHandler.RegisterRoutes(r, authenticator, scope)
		exportHandler.RegisterRoutes(r, authenticator, scope)
		changelogHandler.RegisterRoutes(r)
	})

	go pruneRefreshTokens(ctx, authRepo, logger)

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

// pruneRefreshTokens deletes refresh tokens that expired more than
// tokenRetention ago until ctx ends.
func pruneRefreshTokens(ctx context.Context, repo auth.Repository, logger *slog.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, tokenRetention)
			if err != nil {
				logger.Warn("refresh token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("refresh tokens pruned", "count", n)
			}
		}
	}
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
