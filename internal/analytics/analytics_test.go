package analytics

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-assistant/internal/storage"
)

func edit(s string) *string { return &s }

func sampleRecords() []storage.Record {
	return []storage.Record{
		{CustomerMessage: "I want a refund and help", AIReply: "abc", Settings: storage.Settings{Tone: "professional"}},
		{CustomerMessage: "Where is my delivery?", AIReply: "abc", Settings: storage.Settings{Tone: "professional"}},
		{CustomerMessage: "it is broken, cancel it", AIReply: "abc", Settings: storage.Settings{Tone: "friendly"}},
		// feedback records carry no settings
		{CustomerMessage: "refund please", AIReply: "abc", UserEdit: edit("abcdef"), Edited: true},
		{CustomerMessage: "support?", AIReply: "abcdef", UserEdit: edit("ab"), Edited: true},
		{CustomerMessage: "hello", AIReply: "abc", UserEdit: edit("xyz"), Edited: true, Settings: storage.Settings{Tone: "friendly"}},
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleRecords())
	assert.Equal(t, 6, s.TotalInteractions)
	assert.Equal(t, 3, s.TotalEdited)
	assert.Equal(t, 50.0, s.AccuracyRate)
}

func TestComputeStatsRounding(t *testing.T) {
	recs := []storage.Record{{}, {}, {Edited: true}}
	s := ComputeStats(recs)
	assert.Equal(t, 66.67, s.AccuracyRate)
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)
	assert.Equal(t, Stats{}, s)
}

func TestAnalyze(t *testing.T) {
	rep := Analyze(sampleRecords())

	assert.Equal(t, 6, rep.Total)
	assert.Equal(t, 3, rep.Edited)
	assert.InDelta(t, 50.0, rep.AccuracyRate, 1e-9)

	require.Len(t, rep.EditTypes, 3)
	for i, name := range []string{EditAddedContent, EditShortened, EditRephrased} {
		assert.Equal(t, name, rep.EditTypes[i].Name)
		assert.Equal(t, 1, rep.EditTypes[i].Count)
		assert.InDelta(t, 33.33, rep.EditTypes[i].Percent, 0.01)
	}

	require.Len(t, rep.Tones, 3)
	assert.Equal(t, ToneStats{Tone: "friendly", Total: 2, Edited: 1, Accuracy: 50}, rep.Tones[0])
	assert.Equal(t, ToneStats{Tone: "professional", Total: 2, Edited: 0, Accuracy: 100}, rep.Tones[1])
	assert.Equal(t, ToneStats{Tone: UnknownTone, Total: 2, Edited: 2, Accuracy: 0}, rep.Tones[2])

	// refund 2, general_support 2, shipping 1, technical 1, cancellations 1
	require.Len(t, rep.Issues, 5)
	assert.Equal(t, "refund_requests", rep.Issues[0].Name)
	assert.Equal(t, 2, rep.Issues[0].Count)
	assert.Equal(t, "general_support", rep.Issues[1].Name)
	assert.Equal(t, "shipping_inquiries", rep.Issues[2].Name)
	assert.Equal(t, "technical_issues", rep.Issues[3].Name)
	assert.Equal(t, "cancellations", rep.Issues[4].Name)

	var total int
	for _, i := range rep.Issues {
		total += i.Count
	}
	assert.Greater(t, total, rep.Total, "issue categories overlap")

	assert.Contains(t, rep.Suggestions, "Collect more data (at least 50 interactions recommended)")
	assert.Contains(t, rep.Suggestions, "High edit rate - consider refining system prompts")
	assert.NotContains(t, rep.Suggestions, "Test with different industries and tones")
}

func TestAnalyzeEditWithoutText(t *testing.T) {
	rep := Analyze([]storage.Record{{AIReply: "abc", Edited: true}})
	require.Len(t, rep.EditTypes, 1)
	assert.Equal(t, EditShortened, rep.EditTypes[0].Name)
}

func TestAnalyzeLowEditRate(t *testing.T) {
	recs := make([]storage.Record, 20)
	for i := range recs {
		recs[i] = storage.Record{CustomerMessage: "hi", Settings: storage.Settings{Tone: "casual"}}
	}
	recs[0].Edited = true

	rep := Analyze(recs)
	assert.NotContains(t, rep.Suggestions, "Collect more data (at least 50 interactions recommended)")
	assert.Contains(t, rep.Suggestions, "Excellent performance! Consider adding more features")
	assert.Contains(t, rep.Suggestions, "Consider A/B testing different prompt variations")
	assert.Empty(t, rep.Issues)
}

func TestAnalyzeEmpty(t *testing.T) {
	rep := Analyze(nil)
	assert.Equal(t, 0, rep.Total)
	assert.Equal(t, 0.0, rep.AccuracyRate)
	assert.Empty(t, rep.Suggestions)
	assert.Contains(t, rep.Summary(), "No data to analyze yet")
}

func TestSummary(t *testing.T) {
	summary := Analyze(sampleRecords()).Summary()
	for _, want := range []string{
		"Total Interactions: 6",
		"Edited Responses:   3",
		"Accuracy Rate:      50.0%",
		"Added content: 1 (33.3%)",
		"Friendly: 50.0% accuracy (2 uses)",
		"Unknown: 0.0% accuracy (2 uses)",
		"Refund Requests: 2 (33.3%)",
		"• Review most common issues to create templates",
	} {
		assert.Contains(t, summary, want)
	}
}

func TestRenderHeadings(t *testing.T) {
	out := Analyze(sampleRecords()).Render(func(s string) string { return "## " + s })
	assert.Contains(t, out, "## BASIC STATISTICS")
	assert.Contains(t, out, "## IMPROVEMENT SUGGESTIONS")
}

func TestToJSON(t *testing.T) {
	js, err := Analyze(sampleRecords()).ToJSON()
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Equal(t, 6, decoded.Total)
	assert.Len(t, decoded.Tones, 3)
}

func TestIssueLabel(t *testing.T) {
	assert.Equal(t, "Refund Requests", IssueLabel("refund_requests"))
	assert.Equal(t, "Cancellations", IssueLabel("cancellations"))
}

func TestLoadAndAnalyzeIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	rec, err := storage.NewDailyRecorder(dir)
	require.NoError(t, err)
	rec.WithClock(func() time.Time { return time.Date(2025, 2, 3, 9, 0, 0, 0, time.Local) })
	for _, r := range sampleRecords() {
		_, err := rec.Record(r.CustomerMessage, r.AIReply, r.Settings, r.UserEdit)
		require.NoError(t, err)
	}

	first, err := Load(dir)
	require.NoError(t, err)
	second, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, Analyze(first), Analyze(second))
	assert.Equal(t, ComputeStats(first), ComputeStats(second))
	assert.Equal(t, 6, len(first))
}

func TestLoadMissingDirectory(t *testing.T) {
	recs, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0.0, ComputeStats(recs).AccuracyRate)
}
