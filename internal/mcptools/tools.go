// Package mcptools exposes the support assistant as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"support-assistant/internal/analytics"
	"support-assistant/internal/assistant"
	"support-assistant/internal/logging"
	"support-assistant/internal/sanitize"
	"support-assistant/internal/storage"
)

type InteractionLog interface {
	Record(customerMessage, aiReply string, settings storage.Settings, userEdit *string) (storage.Record, error)
	LoadInteractions() ([]storage.Record, error)
}

// maxFeedbackBytes matches the HTTP request body cap.
const maxFeedbackBytes = 1 << 20

type Options struct {
	BusinessName       string
	Tone               string
	Industry           string
	EnableLogging      bool
	EnableEditTracking bool
}

// Tools holds the handlers behind generate_reply, submit_feedback and get_stats.
type Tools struct {
	assistant *assistant.Assistant
	log       InteractionLog
	opts      Options
	logger    *zap.Logger
}

func New(a *assistant.Assistant, log InteractionLog, opts Options, logger *zap.Logger) *Tools {
	if opts.BusinessName == "" {
		opts.BusinessName = assistant.DefaultBusinessName
	}
	if opts.Tone == "" {
		opts.Tone = assistant.DefaultTone
	}
	if opts.Industry == "" {
		opts.Industry = assistant.DefaultIndustry
	}
	return &Tools{assistant: a, log: log, opts: opts, logger: logging.OrNop(logger)}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_reply",
		Description: "Drafts a customer support reply. Arguments: message (required), business_name, tone, industry, add_signature",
	}, t.GenerateReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_feedback",
		Description: "Records an operator's edit of a drafted reply. Arguments: customer_message, original_reply, edited_reply",
	}, t.SubmitFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Returns total interactions, edited replies and accuracy rate",
	}, t.GetStats)
}

func (t *Tools) GenerateReply(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	message, ok := args["message"].(string)
	if !ok {
		return errorResult("message parameter is required and must be a string"), nil
	}

	addSignature := true
	if v, ok := args["add_signature"].(bool); ok {
		addSignature = v
	}
	settings := assistant.Settings{
		Tone:         stringArg(args, "tone", t.opts.Tone),
		Industry:     stringArg(args, "industry", t.opts.Industry),
		AddSignature: addSignature,
	}

	result, err := t.assistant.GenerateReply(ctx, message, stringArg(args, "business_name", t.opts.BusinessName), settings)
	if err != nil {
		if sanitize.IsValidation(err) {
			return errorResult(err.Error()), nil
		}
		t.logger.Error("reply generation failed", zap.Error(err))
		return errorResult("An unexpected error occurred"), nil
	}

	if t.opts.EnableLogging {
		if _, err := t.log.Record(message, result.Reply, settings.Record(), nil); err != nil {
			t.logger.Error("failed to record interaction", zap.Error(err))
		}
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: result.Reply}},
		Meta: map[string]any{
			"cleaned_message": result.CleanedMessage,
			"tone":            settings.Tone,
			"industry":        settings.Industry,
			"add_signature":   settings.AddSignature,
		},
	}, nil
}

func (t *Tools) SubmitFeedback(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	edited, ok := args["edited_reply"].(string)
	if !ok {
		return errorResult("edited_reply parameter is required and must be a string"), nil
	}
	customer, original := stringArg(args, "customer_message", ""), stringArg(args, "original_reply", "")
	if len(customer)+len(original)+len(edited) > maxFeedbackBytes {
		return errorResult("feedback is too large"), nil
	}

	if !t.opts.EnableEditTracking {
		return textResult("Edit tracking is disabled"), nil
	}
	if _, err := t.log.Record(customer, original, storage.Settings{}, &edited); err != nil {
		t.logger.Error("failed to record feedback", zap.Error(err))
		return errorResult("An unexpected error occurred"), nil
	}
	return textResult("Feedback recorded"), nil
}

func (t *Tools) GetStats(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	records, err := t.log.LoadInteractions()
	if err != nil {
		t.logger.Error("failed to load interactions", zap.Error(err))
		return errorResult("An unexpected error occurred"), nil
	}
	data, err := json.Marshal(analytics.ComputeStats(records))
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}
