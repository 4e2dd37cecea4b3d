package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"support-assistant/internal/assistant"
	"support-assistant/internal/config"
	"support-assistant/internal/llm"
	"support-assistant/internal/logging"
	"support-assistant/internal/notify"
	"support-assistant/internal/ratelimit"
	"support-assistant/internal/scheduler"
	"support-assistant/internal/server"
	"support-assistant/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: .env file not loaded: %v", err)
	}

	cfg := config.New()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.Model())
	if err != nil {
		logger.Fatal("failed to create reply provider", zap.Error(err))
	}

	rec, err := storage.NewDailyRecorder(cfg.LogDirectory)
	if err != nil {
		logger.Fatal("failed to init interaction log", zap.Error(err), zap.String("dir", cfg.LogDirectory))
	}

	a := assistant.New(client, assistant.Options{
		MaxInputLength:   cfg.MaxInputLength,
		MaxOutputLength:  cfg.MaxOutputLength,
		SignatureEnabled: cfg.EnableSignature,
	}, logger.Named("assistant"))

	srv := server.New(a, rec, ratelimit.New(cfg.RateLimitPerHour), server.Options{
		Addr:                cfg.HTTPAddr,
		DefaultBusinessName: cfg.DefaultBusinessName,
		DefaultTone:         cfg.DefaultTone,
		DefaultIndustry:     cfg.DefaultIndustry,
		EnableLogging:       cfg.EnableLogging,
		EnableEditTracking:  cfg.EnableEditTracking,
	}, logger.Named("http"))

	var sched *scheduler.Scheduler
	if cfg.EnableAnalytics {
		sched = scheduler.New(cfg.ReportCron, logger.Named("scheduler"))
		sched.SetReportFunction(reportJob(rec.Dir(), newNotifier(cfg, logger)))
		if err := sched.Start(); err != nil {
			logger.Fatal("failed to start report scheduler", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	if sched != nil {
		sched.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.TelegramBotToken == "" || cfg.AdminChatID == 0 {
		return notify.NewLogNotifier(logger.Named("report"))
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.AdminChatID)
	if err != nil {
		logger.Warn("telegram notifier unavailable, reports go to the log", zap.Error(err))
		return notify.NewLogNotifier(logger.Named("report"))
	}
	return tg
}
