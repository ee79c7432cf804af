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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-komisi/internal/audit"
	"github.com/noah-isme/backend-komisi/internal/cache"
	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/config"
	"github.com/noah-isme/backend-komisi/internal/dashboard"
	"github.com/noah-isme/backend-komisi/internal/db"
	"github.com/noah-isme/backend-komisi/internal/db/migrations"
	"github.com/noah-isme/backend-komisi/internal/events"
	"github.com/noah-isme/backend-komisi/internal/gate"
	"github.com/noah-isme/backend-komisi/internal/health"
	"github.com/noah-isme/backend-komisi/internal/invoice"
	"github.com/noah-isme/backend-komisi/internal/lock"
	"github.com/noah-isme/backend-komisi/internal/obs"
	"github.com/noah-isme/backend-komisi/internal/product"
	"github.com/noah-isme/backend-komisi/internal/ratelimit"
	"github.com/noah-isme/backend-komisi/internal/repo"
	"github.com/noah-isme/backend-komisi/internal/security"
	"github.com/noah-isme/backend-komisi/internal/settings"
	"github.com/noah-isme/backend-komisi/internal/tasks"
)

const serviceName = "komisi-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Str("service", serviceName).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{AppName: serviceName})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisURL, cfg.MetricsEnabled)
	if redisClient == nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	if err != nil {
		logger.Warn().Err(err).Msg("redis instrumentation")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	taskClient := asynq.NewClient(tasks.RedisOpt(redisClient))
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	store := repo.New(pool)

	dashboardSvc := &dashboard.Service{
		Q:            store.Queries,
		Cache:        cache.NewJSON(redisClient, cfg.DashboardCacheTTL),
		Logger:       obs.WithComponent(logger, "dashboard"),
		DefaultRange: cfg.DashboardDefaultRangeDays,
	}

	bus := &events.Bus{
		Store: store.Queries,
		Scheduler: tasks.Enqueuer{
			Client: taskClient,
			Days:   cfg.DashboardDefaultRangeDays,
			Logger: obs.WithComponent(logger, "tasks"),
		},
		Notifiers: []events.Notifier{
			dashboard.Invalidator{Svc: dashboardSvc},
			events.LogNotifier{Logger: obs.WithComponent(logger, "events")},
		},
	}

	settingsSvc := &settings.Service{
		Q:           store.Queries,
		Cache:       cache.NewJSON(redisClient, cfg.SettingsCacheTTL),
		Events:      bus,
		Logger:      obs.WithComponent(logger, "settings"),
		DefaultRest: cfg.DefaultRestPercentage,
	}
	if _, err := settingsSvc.EnsureDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ensure commission settings")
	}

	gateSvc := &gate.Service{
		Hashes:      settingsSvc,
		Failures:    ratelimit.Limiter{Client: redisClient, Prefix: "gate:fail:"},
		MaxAttempts: cfg.GateMaxAttempts,
		Window:      cfg.GateLockoutWindow,
		Tokens: gate.Tokens{
			Secret:    []byte(cfg.GateTokenSecret),
			Issuer:    serviceName,
			Audience:  serviceName,
			TTL:       cfg.GateSessionTTL,
			ClockSkew: 30 * time.Second,
		},
		Logger: obs.WithComponent(logger, "gate"),
	}
	created, err := gateSvc.Bootstrap(ctx, cfg.GatePassphrase)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap gate passphrase")
	}
	if created {
		logger.Info().Msg("gate passphrase initialised from environment")
	}
	gateHandler := &gate.Handler{Svc: gateSvc, SecureCookie: cfg.IsProduction()}
	gateMiddleware := gate.Middleware{Service: gateSvc}

	productHandler := &product.Handler{Svc: &product.Service{
		Q:      store.Queries,
		Events: bus,
		Logger: obs.WithComponent(logger, "product"),
	}}

	invoiceSvc := &invoice.Service{
		Store:    invoice.PgStore{Store: store},
		Settings: settingsSvc,
		Locker:   lock.Locker{R: redisClient, RetryBackoff: cfg.LockRetryBackoff, MaxWait: cfg.LockTTL},
		LockTTL:  cfg.LockTTL,
		Events:   bus,
		Logger:   obs.WithComponent(logger, "invoice"),
	}
	invoiceHandler := &invoice.Handler{Svc: invoiceSvc, DefaultLimit: cfg.ListDefaultLimit, MaxLimit: cfg.ListMaxLimit}

	settingsHandler := &settings.Handler{Svc: settingsSvc}
	dashboardHandler := &dashboard.Handler{Svc: dashboardSvc}

	auditSvc := &audit.Service{Store: store.Queries, Enabled: cfg.AuditEnabled, SamplingRate: cfg.AuditSamplingRate}
	auditRecorder := audit.HTTPRecorder{
		Service: auditSvc,
		OnError: func(err error) { logger.Warn().Err(err).Msg("record audit entry") },
	}
	auditHandler := &audit.Handler{Store: store.Queries}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	globalLimit, err := ratelimit.Global(redisClient, cfg.RateLimit, "rl:global")
	if err != nil {
		logger.Fatal().Err(err).Msg("configure rate limit")
	}
	unlockLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("unlock"),
			Window: time.Minute,
			Max:    cfg.GateMaxAttempts * 4,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("unlock rate limiter") },
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:                cfg.SecurityHeadersEnabled,
		EnableHSTS:            cfg.HSTSEnabled,
		HSTSMaxAge:            63072000,
		HSTSIncludeSubdomains: true,
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.PprofEnabled {
		r.Mount("/debug", debugRoutes(cfg.PprofUser, cfg.PprofPass))
	}

	healthHandler := health.Handler{Probes: []health.Probe{
		health.Postgres(pool, 500*time.Millisecond),
		health.Redis(redisClient, 300*time.Millisecond),
	}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(globalLimit)

		v.With(unlockLimit.Middleware).Post("/gate/unlock", gateHandler.Unlock)

		v.Group(func(p chi.Router) {
			p.Use(gateMiddleware.RequireSession)

			p.Get("/gate/session", gateHandler.Session)
			p.With(auditRecorder.Middleware(audit.HTTPConfig{Action: "gate.passphrase.change", ResourceType: "gate"})).
				Post("/gate/passphrase", gateHandler.ChangePassphrase)

			p.Route("/products", func(pr chi.Router) {
				pr.Use(auditRecorder.Middleware(audit.HTTPConfig{ResourceType: "products", ResourceIDParam: "productID"}))
				productHandler.Routes(pr)
			})

			p.Get("/settings", settingsHandler.Get)
			p.With(auditRecorder.Middleware(audit.HTTPConfig{ResourceType: "settings"})).
				Put("/settings", settingsHandler.Update)

			p.Post("/commission/preview", invoiceHandler.Preview)

			p.Route("/invoices", func(in chi.Router) {
				in.Use(idem.Middleware)
				in.Use(auditRecorder.Middleware(audit.HTTPConfig{ResourceType: "invoices", ResourceIDParam: "invoiceID"}))
				invoiceHandler.Routes(in)
			})

			p.Get("/dashboard/summary", dashboardHandler.Summary)
			p.Get("/audit-logs", auditHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-runCtx.Done()
	health.SetReady(false)
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// debugRoutes serves chi's profiler under /debug, behind basic auth when a user is configured.
func debugRoutes(user, pass string) http.Handler {
	r := chi.NewRouter()
	if user != "" {
		r.Use(middleware.BasicAuth("komisi-debug", map[string]string{user: pass}))
	}
	r.Mount("/", middleware.Profiler())
	return r
}
