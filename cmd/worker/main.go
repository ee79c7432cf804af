package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/cache"
	"github.com/noah-isme/backend-komisi/internal/config"
	"github.com/noah-isme/backend-komisi/internal/dashboard"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/obs"
	"github.com/noah-isme/backend-komisi/internal/tasks"
)

const serviceName = "komisi-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", serviceName).Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := db.Connect(connectCtx, cfg.DatabaseURL, db.PoolOptions{AppName: serviceName, MaxConns: int32(cfg.WorkerConcurrency) + 1})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisClient, err := cache.Connect(connectCtx, cfg.RedisURL, false)
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

	dashboardSvc := &dashboard.Service{
		Q:            dbgen.New(pool),
		Cache:        cache.NewJSON(redisClient, cfg.DashboardCacheTTL),
		Logger:       obs.WithComponent(logger, "dashboard"),
		DefaultRange: cfg.DashboardDefaultRangeDays,
	}

	srv := asynq.NewServer(tasks.RedisOpt(redisClient), asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		Queues:          map[string]int{"default": 1},
		ShutdownTimeout: 10 * time.Second,
		Logger:          asynqLogger{obs.WithComponent(logger, "asynq")},
		ErrorHandler: asynq.ErrorHandlerFunc(func(taskCtx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(taskCtx)
			logger.Error().Err(err).Str("task", task.Type()).Int("retried", retried).Msg("task failed")
		}),
	})
	mux := tasks.NewServeMux(tasks.WarmHandler{Dashboard: dashboardSvc, Logger: obs.WithComponent(logger, "tasks")})

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	<-ctx.Done()
	logger.Info().Msg("draining tasks")
	srv.Shutdown()
	logger.Info().Msg("worker stopped")
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct{ l zerolog.Logger }

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
