package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesmith/pagesmith/internal/app/migrate"
	"github.com/pagesmith/pagesmith/internal/config"
	httpx "github.com/pagesmith/pagesmith/internal/http"
	"github.com/pagesmith/pagesmith/internal/logger"
	"github.com/pagesmith/pagesmith/internal/repository/postgres"
	"github.com/pagesmith/pagesmith/internal/service/deploy"
	"github.com/pagesmith/pagesmith/internal/service/gitdeploy"
	"github.com/pagesmith/pagesmith/internal/service/intake"
	"github.com/pagesmith/pagesmith/internal/service/logs"
	"github.com/pagesmith/pagesmith/internal/service/notify"
	"github.com/pagesmith/pagesmith/internal/service/sitegen"
	"github.com/pagesmith/pagesmith/internal/ws"
)

func main() {
	cfg := config.Load()
	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}
	log := logger.New("api", level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	logHub := ws.NewHub()
	logSvc := logs.New(repo, logHub, log)

	generator := sitegen.New(sitegen.OwnerFromEnv(),
		sitegen.WithLLM(sitegen.NewLLM(cfg.OpenAIKey, cfg.OpenAIModel)),
		sitegen.WithLogger(log),
	)

	publisher, err := gitdeploy.New(cfg.GitHubToken, cfg.GitHubUsername, log)
	if err != nil {
		log.Error("github deployment unavailable", "error", err)
		os.Exit(1)
	}

	notifier := notify.New(log, cfg.NotifyAttempts, cfg.NotifyBaseDelay)

	worker := deploy.New(repo, logSvc, generator, publisher, notifier, log, cfg.QueueSize, cfg.PagesWaitAttempts)
	go worker.Run(ctx)

	intakeSvc := intake.New(repo, worker, cfg.StudentEmail, cfg.Secret, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, intakeSvc, repo, logSvc, limiter, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		worker.Wait()
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
