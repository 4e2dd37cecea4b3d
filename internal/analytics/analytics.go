package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"support-assistant/internal/storage"
)

const UnknownTone = "unknown"

// Edit categories, judged by reply length only.
const (
	EditAddedContent = "Added content"
	EditShortened    = "Shortened response"
	EditRephrased    = "Rephrased"
)

var editOrder = []string{EditAddedContent, EditShortened, EditRephrased}

type issueCategory struct {
	name     string
	keywords []string
}

// A record may match several categories.
var issueCategories = []issueCategory{
	{name: "refund_requests", keywords: []string{"refund", "money back"}},
	{name: "shipping_inquiries", keywords: []string{"shipping", "delivery"}},
	{name: "technical_issues", keywords: []string{"not working", "broken"}},
	{name: "cancellations", keywords: []string{"cancel"}},
	{name: "general_support", keywords: []string{"help", "support"}},
}

const topIssues = 5

// Stats is the summary served by the stats endpoint.
type Stats struct {
	TotalInteractions int     `json:"total_interactions" yaml:"total_interactions"`
	TotalEdited       int     `json:"total_edited" yaml:"total_edited"`
	AccuracyRate      float64 `json:"accuracy_rate" yaml:"accuracy_rate"`
}

type CountShare struct {
	Name    string  `json:"name" yaml:"name"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type ToneStats struct {
	Tone     string  `json:"tone" yaml:"tone"`
	Total    int     `json:"total" yaml:"total"`
	Edited   int     `json:"edited" yaml:"edited"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
}

// Report is the full offline analysis of the interaction log.
type Report struct {
	Total        int          `json:"total" yaml:"total"`
	Edited       int          `json:"edited" yaml:"edited"`
	AccuracyRate float64      `json:"accuracy_rate" yaml:"accuracy_rate"`
	EditTypes    []CountShare `json:"edit_types" yaml:"edit_types"`
	Tones        []ToneStats  `json:"tones" yaml:"tones"`
	Issues       []CountShare `json:"issues" yaml:"issues"`
	Suggestions  []string     `json:"suggestions" yaml:"suggestions"`
}

// Load reads every daily partition under dir.
func Load(dir string) ([]storage.Record, error) {
	return storage.LoadDir(dir)
}

// Accuracy is the percentage of interactions that were not edited, 0 for an empty set.
func Accuracy(total, edited int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-edited) / float64(total) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeStats counts interactions and edits. AccuracyRate is rounded to two decimals.
func ComputeStats(records []storage.Record) Stats {
	s := Stats{TotalInteractions: len(records)}
	for _, r := range records {
		if r.Edited {
			s.TotalEdited++
		}
	}
	s.AccuracyRate = round2(Accuracy(s.TotalInteractions, s.TotalEdited))
	return s
}

// Analyze builds a Report over records. It does not retain or mutate records.
func Analyze(records []storage.Record) *Report {
	stats := ComputeStats(records)
	rep := &Report{
		Total:        stats.TotalInteractions,
		Edited:       stats.TotalEdited,
		AccuracyRate: Accuracy(stats.TotalInteractions, stats.TotalEdited),
		EditTypes:    []CountShare{},
		Tones:        []ToneStats{},
		Issues:       []CountShare{},
		Suggestions:  []string{},
	}
	if rep.Total == 0 {
		return rep
	}
	rep.EditTypes = editTypes(records, rep.Edited)
	rep.Tones = toneStats(records)
	rep.Issues = issueFrequency(records)
	rep.Suggestions = suggestions(rep.Total, rep.Edited)
	return rep
}

func classifyEdit(original, edited string) string {
	o, e := utf8.RuneCountInString(original), utf8.RuneCountInString(edited)
	switch {
	case e > o:
		return EditAddedContent
	case e < o:
		return EditShortened
	default:
		return EditRephrased
	}
}

func editTypes(records []storage.Record, edited int) []CountShare {
	counts := map[string]int{EditAddedContent: 0, EditShortened: 0, EditRephrased: 0}
	for _, r := range records {
		if !r.Edited {
			continue
		}
		var edit string
		if r.UserEdit != nil {
			edit = *r.UserEdit
		}
		counts[classifyEdit(r.AIReply, edit)]++
	}
	out := []CountShare{}
	for _, name := range editOrder {
		if counts[name] == 0 {
			continue
		}
		out = append(out, CountShare{Name: name, Count: counts[name], Percent: percent(counts[name], edited)})
	}
	return out
}

func toneStats(records []storage.Record) []ToneStats {
	byTone := make(map[string]*ToneStats)
	for _, r := range records {
		tone := r.Settings.Tone
		if tone == "" {
			tone = UnknownTone
		}
		ts, ok := byTone[tone]
		if !ok {
			ts = &ToneStats{Tone: tone}
			byTone[tone] = ts
		}
		ts.Total++
		if r.Edited {
			ts.Edited++
		}
	}
	out := make([]ToneStats, 0, len(byTone))
	for _, ts := range byTone {
		ts.Accuracy = Accuracy(ts.Total, ts.Edited)
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tone < out[j].Tone })
	return out
}

func issueFrequency(records []storage.Record) []CountShare {
	counts := make([]int, len(issueCategories))
	for _, r := range records {
		msg := strings.ToLower(r.CustomerMessage)
		for i, cat := range issueCategories {
			if containsAny(msg, cat.keywords) {
				counts[i]++
			}
		}
	}
	out := []CountShare{}
	for i, cat := range issueCategories {
		if counts[i] == 0 {
			continue
		}
		out = append(out, CountShare{Name: cat.name, Count: counts[i], Percent: percent(counts[i], len(records))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topIssues {
		out = out[:topIssues]
	}
	return out
}

func suggestions(total, edited int) []string {
	var out []string
	rate := float64(edited) / float64(total)
	if total < 10 {
		out = append(out, "Collect more data (at least 50 interactions recommended)")
	}
	if rate > 0.3 {
		out = append(out,
			"High edit rate - consider refining system prompts",
			"Review edited responses to identify patterns")
	}
	if rate < 0.1 {
		out = append(out,
			"Excellent performance! Consider adding more features",
			"Test with different industries and tones")
	}
	return append(out,
		"Review most common issues to create templates",
		"Consider A/B testing different prompt variations")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// IssueLabel turns a category key such as "refund_requests" into "Refund Requests".
func IssueLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}

// Summary renders the report as plain text.
func (r *Report) Summary() string {
	return r.Render(func(title string) string { return title })
}

// Render renders the report, passing each section title through heading.
func (r *Report) Render(heading func(string) string) string {
	var b strings.Builder
	if r.Total == 0 {
		b.WriteString("No data to analyze yet. Generate some replies first!\n")
		return b.String()
	}
	section := func(title string) {
		b.WriteString(heading(title) + "\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")
	}

	section("BASIC STATISTICS")
	fmt.Fprintf(&b, "Total Interactions: %d\n", r.Total)
	fmt.Fprintf(&b, "Edited Responses:   %d\n", r.Edited)
	fmt.Fprintf(&b, "Accuracy Rate:      %.1f%%\n\n", r.AccuracyRate)

	section("EDIT PATTERNS")
	if len(r.EditTypes) == 0 {
		b.WriteString("No edits yet - AI performing well!\n")
	}
	for _, e := range r.EditTypes {
		fmt.Fprintf(&b, "%s: %d (%.1f%%)\n", e.Name, e.Count, e.Percent)
	}
	b.WriteString("\n")

	section("TONE PERFORMANCE")
	for _, t := range r.Tones {
		fmt.Fprintf(&b, "%s: %.1f%% accuracy (%d uses)\n", capitalize(t.Tone), t.Accuracy, t.Total)
	}
	b.WriteString("\n")

	section("COMMON CUSTOMER ISSUES")
	for _, i := range r.Issues {
		fmt.Fprintf(&b, "%s: %d (%.1f%%)\n", IssueLabel(i.Name), i.Count, i.Percent)
	}
	b.WriteString("\n")

	section("IMPROVEMENT SUGGESTIONS")
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "• %s\n", s)
	}
	return b.String()
}

// ToJSON serializes the report for machine consumption.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
