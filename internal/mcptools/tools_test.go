package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-assistant/internal/analytics"
	"support-assistant/internal/assistant"
	"support-assistant/internal/llm"
	"support-assistant/internal/storage"
)

func newTools(t *testing.T) (*Tools, *storage.DailyRecorder) {
	t.Helper()
	rec, err := storage.NewDailyRecorder(t.TempDir())
	require.NoError(t, err)
	a := assistant.New(llm.NewKeyword(), assistant.Options{SignatureEnabled: true}, nil)
	return New(a, rec, Options{BusinessName: "Acme", EnableLogging: true, EnableEditTracking: true}, nil), rec
}

func call(args map[string]interface{}) *mcp.CallToolParamsFor[map[string]interface{}] {
	return &mcp.CallToolParamsFor[map[string]interface{}]{Arguments: args}
}

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGenerateReply(t *testing.T) {
	tools, rec := newTools(t)
	res, err := tools.GenerateReply(context.Background(), nil, call(map[string]interface{}{"message": "I need a refund"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	reply := text(t, res)
	assert.True(t, strings.HasPrefix(reply, llm.RefundReply))
	assert.True(t, strings.HasSuffix(reply, "Best regards,\nAcme"))

	records, err := rec.LoadInteractions()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, assistant.DefaultTone, records[0].Settings.Tone)
}

func TestGenerateReplyWithoutSignature(t *testing.T) {
	tools, _ := newTools(t)
	res, err := tools.GenerateReply(context.Background(), nil, call(map[string]interface{}{
		"message": "cancel my plan", "add_signature": false,
	}))
	require.NoError(t, err)
	assert.Equal(t, llm.CancellationReply, text(t, res))
}

func TestGenerateReplyErrors(t *testing.T) {
	tools, rec := newTools(t)
	for _, args := range []map[string]interface{}{
		{},
		{"message": 42},
		{"message": "   "},
		{"message": "<script>x</script>"},
	} {
		res, err := tools.GenerateReply(context.Background(), nil, call(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}
	records, err := rec.LoadInteractions()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitFeedbackAndStats(t *testing.T) {
	tools, _ := newTools(t)
	ctx := context.Background()

	_, err := tools.GenerateReply(ctx, nil, call(map[string]interface{}{"message": "hello"}))
	require.NoError(t, err)

	res, err := tools.SubmitFeedback(ctx, nil, call(map[string]interface{}{
		"customer_message": "hello", "original_reply": "hi", "edited_reply": "hi there",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Feedback recorded", text(t, res))

	res, err = tools.GetStats(ctx, nil, call(nil))
	require.NoError(t, err)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &stats))
	assert.Equal(t, analytics.Stats{TotalInteractions: 2, TotalEdited: 1, AccuracyRate: 50}, stats)
}

func TestSubmitFeedbackRequiresEdit(t *testing.T) {
	tools, _ := newTools(t)
	res, err := tools.SubmitFeedback(context.Background(), nil, call(map[string]interface{}{"customer_message": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSubmitFeedbackRejectsOversizedInput(t *testing.T) {
	tools, rec := newTools(t)
	res, err := tools.SubmitFeedback(context.Background(), nil, call(map[string]interface{}{
		"customer_message": "x",
		"original_reply":   strings.Repeat("a", maxFeedbackBytes/2),
		"edited_reply":     strings.Repeat("b", maxFeedbackBytes/2),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	records, err := rec.LoadInteractions()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFeatureFlagsDisableWrites(t *testing.T) {
	rec, err := storage.NewDailyRecorder(t.TempDir())
	require.NoError(t, err)
	a := assistant.New(llm.NewKeyword(), assistant.Options{}, nil)
	tools := New(a, rec, Options{}, nil)
	ctx := context.Background()

	res, err := tools.GenerateReply(ctx, nil, call(map[string]interface{}{"message": "hello"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = tools.SubmitFeedback(ctx, nil, call(map[string]interface{}{
		"customer_message": "hello", "original_reply": "hi", "edited_reply": "hi there",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Edit tracking is disabled", text(t, res))

	records, err := rec.LoadInteractions()
	require.NoError(t, err)
	assert.Empty(t, records)
}
