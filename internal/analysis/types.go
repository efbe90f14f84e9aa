package analysis

import (
	"errors"
	"strings"

	"github.com/BhavyaPagadala/urbix/internal/report"
)

var (
	// ErrAnalysisFailed wraps every failure surfaced by TryAnalyze.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrNothingToSummarize is returned by SummarizePulse for an empty collection.
	ErrNothingToSummarize = errors.New("no reports to summarize")
)

// Result is the classification returned for one report.
type Result struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    report.Category  `json:"category"`
	Department  string           `json:"department"`
	Sentiment   report.Sentiment `json:"sentiment"`
	Summary     string           `json:"summary"`
	Priority    report.Priority  `json:"priority"`
}

// Fallback is the deterministic result used whenever analysis fails.
func Fallback() Result {
	return Result{
		Title:       "Identified Urban Issue",
		Description: "An issue has been flagged and requires manual verification.",
		Category:    report.CategoryOther,
		Department:  "General City Services",
		Sentiment:   report.SentimentNeutral,
		Summary:     "AI analysis encountered an error. Human review required.",
		Priority:    report.PriorityMedium,
	}
}

// Normalize coerces r onto the closed enums. Category and sentiment accept
// canonical values or display labels; anything unknown takes the Fallback
// value. A blank department routes to report.DefaultDepartment.
func (r Result) Normalize() Result {
	fb := Fallback()
	out := Result{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Category:    fb.Category,
		Department:  strings.TrimSpace(r.Department),
		Sentiment:   fb.Sentiment,
		Summary:     strings.TrimSpace(r.Summary),
		Priority:    fb.Priority,
	}
	if c, ok := report.ParseCategory(string(r.Category)); ok {
		out.Category = c
	}
	if s, ok := report.ParseSentiment(string(r.Sentiment)); ok {
		out.Sentiment = s
	}
	if p, ok := report.ParsePriority(string(r.Priority)); ok {
		out.Priority = p
	}
	if out.Department == "" {
		out.Department = report.DefaultDepartment
	}
	return out
}

// rawResult mirrors the JSON object the model is asked to produce.
type rawResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Sentiment   string `json:"sentiment"`
	Summary     string `json:"summary"`
	Priority    string `json:"priority"`
}

var resultFields = []string{"title", "description", "category", "department", "sentiment", "summary", "priority"}
