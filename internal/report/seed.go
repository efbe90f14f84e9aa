package report

import "time"

// DefaultDepartment is assigned to reports no analysis has routed yet.
const DefaultDepartment = "City Office"

// Seed returns the demo collection used when nothing was ever saved.
func Seed(now time.Time) []Report {
	pothole := now.Add(-48 * time.Hour)
	park := now.Add(-5 * 24 * time.Hour)

	return []Report{
		{
			ID:          "rep-1",
			Reporter:    "city_watcher",
			Title:       "Large Pothole on Main St",
			Description: "There is a massive pothole near the intersection of 5th and Main. It is dangerous for cyclists.",
			Category:    CategoryRoads,
			Department:  DefaultDepartment,
			Sentiment:   SentimentNegative,
			Status:      StatusPending,
			Location:    Location{Locality: "Downtown"},
			CreatedAt:   pothole,
			AIInsights:  "High priority due to safety risk for non-motorized transport.",
			History:     []HistoryEntry{{Timestamp: pothole, Status: StatusPending, Actor: "system"}},
		},
		{
			ID:          "rep-2",
			Reporter:    "green_citizen",
			Title:       "Beautiful New Park Equipment",
			Description: "The new swings at Sunnydale Park are fantastic! Kids love them.",
			Category:    CategoryParks,
			Department:  DefaultDepartment,
			Sentiment:   SentimentPositive,
			Status:      StatusResolved,
			Location:    Location{Locality: "Sunnydale"},
			CreatedAt:   park,
			AIInsights:  "Community satisfaction is high in the Sunnydale locality.",
			History:     []HistoryEntry{{Timestamp: park, Status: StatusResolved, Actor: "system"}},
		},
	}
}
