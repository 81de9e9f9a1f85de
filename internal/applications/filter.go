package applications

import (
	"strings"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter narrows a snapshot client side. It is re-applied to every snapshot.
type Filter struct {
	Search string
	Status string
}

// Apply returns the matching records in their original order. The input is
// never modified.
func (f Filter) Apply(apps []Application) []Application {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status == StatusAll {
		status = ""
	}

	out := make([]Application, 0, len(apps))
	for _, app := range apps {
		if status != "" && app.Status != enums.ApplicationStatus(status) {
			continue
		}
		if term != "" && !matchesSearch(app, term) {
			continue
		}
		out = append(out, app)
	}
	return out
}

func matchesSearch(app Application, term string) bool {
	return strings.Contains(strings.ToLower(app.Company), term) ||
		strings.Contains(strings.ToLower(app.Position), term) ||
		strings.Contains(strings.ToLower(app.Location), term)
}
