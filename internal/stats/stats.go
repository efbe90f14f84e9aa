// Package stats derives dashboard statistics from a report collection.
package stats

import (
	"sort"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/report"
)

// TrendDateLayout renders trend buckets as "Jan 2".
const TrendDateLayout = "Jan 2"

// Count is one bucket of a distribution.
type Count struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// TrendPoint is the number of reports created on one calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Snapshot is every statistic the dashboard shows.
type Snapshot struct {
	Sentiment      []Count      `json:"sentiment"`
	Categories     []Count      `json:"categories"`
	Trends         []TrendPoint `json:"trends"`
	Pending        int          `json:"pending"`
	Reviewing      int          `json:"reviewing"`
	Resolved       int          `json:"resolved"`
	Dismissed      int          `json:"dismissed"`
	Critical       int          `json:"critical"`
	Total          int          `json:"total"`
	ResolutionRate float64      `json:"resolution_rate"`
	Localities     []string     `json:"localities"`
}

// Compute summarizes reports. Days are bucketed in loc; a nil loc means UTC.
func Compute(reports []report.Report, loc *time.Location) Snapshot {
	if loc == nil {
		loc = time.UTC
	}

	snap := Snapshot{
		Total:      len(reports),
		Categories: []Count{},
		Trends:     []TrendPoint{},
		Localities: Localities(reports),
	}

	sentiments := make(map[report.Sentiment]int, len(report.Sentiments))
	categoryIndex := make(map[report.Category]int)

	type day struct {
		start time.Time
		count int
	}
	days := make(map[string]*day)

	for _, r := range reports {
		s := r.Sentiment
		if !isKnownSentiment(s) {
			s = report.SentimentNeutral
		}
		sentiments[s]++

		c := r.Category
		if c == "" {
			c = report.CategoryOther
		}
		if i, ok := categoryIndex[c]; ok {
			snap.Categories[i].Value++
		} else {
			categoryIndex[c] = len(snap.Categories)
			snap.Categories = append(snap.Categories, Count{Key: string(c), Label: c.Label(), Value: 1})
		}

		switch r.Status {
		case report.StatusPending:
			snap.Pending++
		case report.StatusReviewing:
			snap.Reviewing++
		case report.StatusResolved:
			snap.Resolved++
		case report.StatusDismissed:
			snap.Dismissed++
		}
		if s == report.SentimentNegative {
			snap.Critical++
		}

		local := r.CreatedAt.In(loc)
		y, m, d := local.Date()
		key := local.Format("2006-01-02")
		if b, ok := days[key]; ok {
			b.count++
		} else {
			days[key] = &day{start: time.Date(y, m, d, 0, 0, 0, 0, loc), count: 1}
		}
	}

	for _, s := range report.Sentiments {
		snap.Sentiment = append(snap.Sentiment, Count{Key: string(s), Label: s.Label(), Value: sentiments[s]})
	}

	ordered := make([]*day, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })
	for _, d := range ordered {
		snap.Trends = append(snap.Trends, TrendPoint{Date: d.start.Format(TrendDateLayout), Count: d.count})
	}

	if snap.Total > 0 {
		snap.ResolutionRate = float64(snap.Resolved) / float64(snap.Total)
	}
	return snap
}

func isKnownSentiment(s report.Sentiment) bool {
	for _, known := range report.Sentiments {
		if s == known {
			return true
		}
	}
	return false
}

// Localities returns "All" followed by each distinct non-empty locality in
// first-seen order.
func Localities(reports []report.Report) []string {
	out := []string{report.All}
	seen := make(map[string]bool)
	for _, r := range reports {
		l := r.Location.Locality
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
