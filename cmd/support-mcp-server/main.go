package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"support-assistant/internal/assistant"
	"support-assistant/internal/config"
	"support-assistant/internal/llm"
	"support-assistant/internal/logging"
	"support-assistant/internal/mcptools"
	"support-assistant/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	// zap's production config writes to stderr, leaving stdout to the protocol.
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
		logger.Fatal("failed to init interaction log", zap.Error(err))
	}

	a := assistant.New(client, assistant.Options{
		MaxInputLength:   cfg.MaxInputLength,
		MaxOutputLength:  cfg.MaxOutputLength,
		SignatureEnabled: cfg.EnableSignature,
	}, logger.Named("assistant"))

	tools := mcptools.New(a, rec, mcptools.Options{
		BusinessName:       cfg.DefaultBusinessName,
		Tone:               cfg.DefaultTone,
		Industry:           cfg.DefaultIndustry,
		EnableLogging:      cfg.EnableLogging,
		EnableEditTracking: cfg.EnableEditTracking,
	}, logger.Named("mcp"))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "support-assistant-mcp",
		Version: "1.0.0",
	}, nil)
	tools.Register(server)

	logger.Info("starting support assistant MCP server on stdin/stdout",
		zap.Strings("tools", []string{"generate_reply", "submit_feedback", "get_stats"}))
	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		logger.Fatal("MCP server failed", zap.Error(err))
	}
}
