package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"

	"github.com/crispdev/crisp/internal/config"
	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/intake"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/domain/session"
	"github.com/crispdev/crisp/internal/llm"
	"github.com/crispdev/crisp/internal/sqlite"
	"github.com/crispdev/crisp/internal/transport"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	interviewRepo := sqlite.NewInterviewRepository(db)
	identityRepo := sqlite.NewIdentityRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	interviewerRepo := sqlite.NewInterviewerRepository(db)

	interviewSvc := interview.NewService(interviewRepo, identityRepo, logger)
	activitySvc := activity.NewService(activityRepo, logger)
	interviewerSvc := interviewer.NewService(interviewerRepo, logger)

	ctx := context.Background()
	if cfg.Auth.AdminPassword != "" {
		if err := interviewerSvc.EnsureAccount(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no admin password configured, dashboard login disabled")
	}

	client, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		logger.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	extractor := llm.NewExtractor(client, timeout, logger)
	questions := llm.NewQuestioner(client, timeout)
	summarizer := llm.NewSummarizer(client, timeout)

	sessions := session.NewManager(interviewSvc, activitySvc, questions, summarizer, clock.New(), logger)
	intakeSvc := intake.NewService(interviewSvc, activitySvc, extractor, questions, logger)

	tokens := transport.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	router := transport.NewRouter(intakeSvc, interviewSvc, sessions, activitySvc, interviewerSvc, tokens, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer, sessions)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, sessions *session.Manager) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	// flush pending answers so candidates can resume where they left off
	sessions.Shutdown(ctx)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
