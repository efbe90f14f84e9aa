package report

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of civic issue classes.
type Category string

const (
	CategoryRoads          Category = "roads_infrastructure"
	CategoryWater          Category = "water_supply"
	CategorySanitation     Category = "sanitation_waste"
	CategoryElectricity    Category = "electricity"
	CategoryPublicSafety   Category = "public_safety"
	CategoryEnvironment    Category = "environment"
	CategoryTransportation Category = "transportation"
	CategoryParks          Category = "public_parks"
	CategoryHealthcare     Category = "healthcare"
	CategoryOther          Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryRoads, CategoryWater, CategorySanitation, CategoryElectricity,
	CategoryPublicSafety, CategoryEnvironment, CategoryTransportation,
	CategoryParks, CategoryHealthcare, CategoryOther,
}

// CategoryLabels maps categories to display text. Replace it to localize.
var CategoryLabels = map[Category]string{
	CategoryRoads:          "Roads & Infrastructure",
	CategoryWater:          "Water Supply",
	CategorySanitation:     "Sanitation & Waste",
	CategoryElectricity:    "Electricity",
	CategoryPublicSafety:   "Public Safety",
	CategoryEnvironment:    "Environment",
	CategoryTransportation: "Transportation",
	CategoryParks:          "Public Parks",
	CategoryHealthcare:     "Healthcare",
	CategoryOther:          "Other",
}

// Label returns the display text for c, falling back to the raw value.
func (c Category) Label() string {
	if l, ok := CategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory accepts a canonical value or a display label, ignoring case.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}
	return "", false
}

// Status is a report's position in the triage lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusReviewing, StatusResolved, StatusDismissed}

// StatusLabels maps statuses to display text.
var StatusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusReviewing: "Reviewing",
	StatusResolved:  "Resolved",
	StatusDismissed: "Dismissed",
}

func (s Status) Label() string {
	if l, ok := StatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether s is resolved or dismissed.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// ParseStatus accepts a canonical value or a display label, ignoring case.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, st.Label()) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Sentiment is the citizen tone detected in a report.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists sentiments in the order statistics report them.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// SentimentLabels maps sentiments to display text.
var SentimentLabels = map[Sentiment]string{
	SentimentPositive: "Positive",
	SentimentNeutral:  "Neutral",
	SentimentNegative: "Negative",
}

func (s Sentiment) Label() string {
	if l, ok := SentimentLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSentiment accepts a canonical value or a display label, ignoring case.
func ParseSentiment(s string) (Sentiment, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Sentiments {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, st.Label()) {
			return st, true
		}
	}
	return "", false
}

// Priority is the urgency suggested by the last analysis.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low, medium or high, ignoring case.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// Location describes where an issue was observed.
type Location struct {
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Address  string   `json:"address,omitempty"`
	Locality string   `json:"locality"`
}

// HistoryEntry records one status assignment.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Actor     string    `json:"actor"`
}

// Report is a single civic issue submission.
type Report struct {
	ID          string         `json:"id"`
	Reporter    string         `json:"reporter"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    Category       `json:"category"`
	Department  string         `json:"department"`
	Sentiment   Sentiment      `json:"sentiment"`
	Status      Status         `json:"status"`
	Priority    Priority       `json:"priority,omitempty"`
	Location    Location       `json:"location"`
	Image       string         `json:"image,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	AIInsights  string         `json:"ai_insights,omitempty"`
	History     []HistoryEntry `json:"history"`
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	c := r
	if r.Location.Lat != nil {
		lat := *r.Location.Lat
		c.Location.Lat = &lat
	}
	if r.Location.Lng != nil {
		lng := *r.Location.Lng
		c.Location.Lng = &lng
	}
	c.History = append([]HistoryEntry(nil), r.History...)
	return c
}

// Revision counts the status assignments recorded for r.
func (r Report) Revision() int {
	return len(r.History)
}

func cloneAll(reports []Report) []Report {
	out := make([]Report, len(reports))
	for i, r := range reports {
		out[i] = r.Clone()
	}
	return out
}
