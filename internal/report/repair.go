package report

import "fmt"

// repairActor is recorded on history entries synthesized while loading.
const repairActor = "system"

// repair checks a decoded report and brings it back onto the collection
// invariants. Statuses outside the closed set are ErrCorrupt. Unknown
// category, sentiment and priority values are coerced, and a history that
// is empty or ends on a different status gets a system entry for the
// current status.
func repair(rep *Report) error {
	status, err := ParseStatus(string(rep.Status))
	if err != nil {
		return fmt.Errorf("%w: report %s: %v", ErrCorrupt, rep.ID, err)
	}
	rep.Status = status
	for i, h := range rep.History {
		st, err := ParseStatus(string(h.Status))
		if err != nil {
			return fmt.Errorf("%w: report %s history: %v", ErrCorrupt, rep.ID, err)
		}
		rep.History[i].Status = st
	}

	if c, ok := ParseCategory(string(rep.Category)); ok {
		rep.Category = c
	} else {
		rep.Category = CategoryOther
	}
	if s, ok := ParseSentiment(string(rep.Sentiment)); ok {
		rep.Sentiment = s
	} else {
		rep.Sentiment = SentimentNeutral
	}
	if rep.Priority != "" {
		// Priority is optional; an unreadable one is dropped.
		p, _ := ParsePriority(string(rep.Priority))
		rep.Priority = p
	}
	if rep.Department == "" {
		rep.Department = DefaultDepartment
	}

	n := len(rep.History)
	switch {
	case n == 0:
		rep.History = []HistoryEntry{{Timestamp: rep.CreatedAt, Status: rep.Status, Actor: repairActor}}
	case rep.History[n-1].Status != rep.Status:
		at := rep.History[n-1].Timestamp
		if rep.CreatedAt.After(at) {
			at = rep.CreatedAt
		}
		rep.History = append(rep.History, HistoryEntry{Timestamp: at, Status: rep.Status, Actor: repairActor})
	}
	return nil
}
