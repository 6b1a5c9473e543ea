package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/crashaudit/internal/config"
	"github.com/JonMunkholm/crashaudit/internal/core"
	_ "github.com/JonMunkholm/crashaudit/internal/core/tables" // Register all datasets
	"github.com/JonMunkholm/crashaudit/internal/logging"
	"github.com/JonMunkholm/crashaudit/internal/metrics"
	"github.com/JonMunkholm/crashaudit/internal/rules"
	"github.com/JonMunkholm/crashaudit/internal/session"
	"github.com/JonMunkholm/crashaudit/internal/source/postgres"
	"github.com/JonMunkholm/crashaudit/internal/web"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"dataset", cfg.Audit.Dataset,
		"rules_file", cfg.Audit.RulesFile,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"session_ttl", cfg.Session.TTL.String(),
		"database", cfg.Database.Enabled(),
	)

	def, ok := core.Get(cfg.Audit.Dataset)
	if !ok {
		logger.Error("unknown dataset", "dataset", cfg.Audit.Dataset, "available", core.Keys())
		os.Exit(1)
	}
	// Fail fast on a broken rules file instead of on the first upload.
	if _, err := rules.Load(cfg.Audit.RulesFile, def.Rules); err != nil {
		logger.Error("failed to load audit rules", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets registered", "keys", core.Keys())

	ctx := context.Background()

	var source *postgres.Source
	if cfg.Database.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.Database.URL,
			cfg.Database.MaxConns, cfg.Database.MinConns,
			cfg.Database.MaxConnLifetime, cfg.Database.MaxConnIdleTime)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}
		source = postgres.New(pool, cfg.Database.MaxRows)
	}

	m := metrics.New()
	sessions := session.NewManager(
		session.WithLogger(logger),
		session.WithMaxSessions(cfg.Session.MaxSessions),
	)
	limiter := session.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	server := web.NewServer(cfg, web.Deps{
		Sessions: sessions,
		Limiter:  limiter,
		Source:   source,
		Metrics:  m,
	})

	jobCtx, cancelJobs := context.WithCancel(ctx)
	go sessions.RunJanitor(jobCtx, cfg.Session.TTL, cfg.Session.JanitorInterval)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := limiter.Status(); st.Active > 0 {
			logger.Info("waiting for loads to complete", "active", st.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	logger.Info("server stopped")
}
