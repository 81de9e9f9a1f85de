package applications

import (
	"math"
	"sort"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

const recentLimit = 5

// Summary is the dashboard aggregate over one owner's snapshot.
type Summary struct {
	Total       int                             `json:"total"`
	ByStatus    map[enums.ApplicationStatus]int `json:"by_status"`
	SuccessRate int                             `json:"success_rate"`
	Recent      []Application                   `json:"recent"`
	TopPosition string                          `json:"top_position,omitempty"`
}

// Summarize computes counts per status, the success rate and the most recent
// records. SuccessRate is round(100 * (offer + interview) / total) and 0 for
// an empty snapshot.
func Summarize(apps []Application) Summary {
	summary := Summary{
		Total:    len(apps),
		ByStatus: make(map[enums.ApplicationStatus]int, len(enums.ApplicationStatuses())),
		Recent:   []Application{},
	}
	for _, status := range enums.ApplicationStatuses() {
		summary.ByStatus[status] = 0
	}
	for _, app := range apps {
		summary.ByStatus[app.Status]++
	}
	if summary.Total > 0 {
		positive := summary.ByStatus[enums.ApplicationStatusOffer] + summary.ByStatus[enums.ApplicationStatusInterview]
		summary.SuccessRate = int(math.Round(100 * float64(positive) / float64(summary.Total)))
	}

	sorted := make([]Application, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	summary.Recent = sorted
	summary.TopPosition = topPosition(apps)
	return summary
}

// topPosition breaks ties by first occurrence in apps.
func topPosition(apps []Application) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, app := range apps {
		counts[app.Position]++
	}
	for _, app := range apps {
		if c := counts[app.Position]; c > bestCount {
			best, bestCount = app.Position, c
		}
	}
	return best
}

// MostRecentByApplicationDate returns up to limit records ordered by
// application date, newest first.
func MostRecentByApplicationDate(apps []Application, limit int) []Application {
	sorted := make([]Application, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ApplicationDate > sorted[j].ApplicationDate
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
