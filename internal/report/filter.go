package report

import "strings"

// All is the filter value that matches every report.
const All = "All"

// Filter narrows a listing. Empty fields and All match everything.
type Filter struct {
	Locality  string
	Sentiment string
	Category  string
	Status    string
	Reporter  string
}

func unset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Matches reports whether r passes every set field of f.
func (f Filter) Matches(r Report) bool {
	if !unset(f.Locality) && r.Location.Locality != f.Locality {
		return false
	}
	if !unset(f.Sentiment) {
		s, ok := ParseSentiment(f.Sentiment)
		if !ok || r.Sentiment != s {
			return false
		}
	}
	if !unset(f.Category) {
		c, ok := ParseCategory(f.Category)
		if !ok || r.Category != c {
			return false
		}
	}
	if !unset(f.Status) {
		s, err := ParseStatus(f.Status)
		if err != nil || r.Status != s {
			return false
		}
	}
	if !unset(f.Reporter) && !strings.EqualFold(r.Reporter, f.Reporter) {
		return false
	}
	return true
}

// Apply returns the reports that match f, preserving order.
func (f Filter) Apply(reports []Report) []Report {
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
