package applications

import (
	"testing"
	"time"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

func appsWithStatuses(statuses ...enums.ApplicationStatus) []Application {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Application, 0, len(statuses))
	for i, status := range statuses {
		out = append(out, Application{
			Company:   "Acme",
			Position:  "Engineer",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestSummarizeSuccessRate(t *testing.T) {
	apps := appsWithStatuses(
		enums.ApplicationStatusOffer, enums.ApplicationStatusOffer, enums.ApplicationStatusOffer,
		enums.ApplicationStatusInterview, enums.ApplicationStatusInterview,
		enums.ApplicationStatusRejected, enums.ApplicationStatusRejected, enums.ApplicationStatusRejected,
		enums.ApplicationStatusRejected, enums.ApplicationStatusRejected,
	)
	summary := Summarize(apps)
	if summary.Total != 10 {
		t.Fatalf("expected total 10, got %d", summary.Total)
	}
	if summary.SuccessRate != 50 {
		t.Fatalf("expected success rate 50, got %d", summary.SuccessRate)
	}

	sum := 0
	for _, status := range enums.ApplicationStatuses() {
		count, ok := summary.ByStatus[status]
		if !ok {
			t.Fatalf("missing count for %s", status)
		}
		sum += count
	}
	if sum != summary.Total {
		t.Fatalf("status counts sum to %d, want %d", sum, summary.Total)
	}
}

func TestSummarizeRounds(t *testing.T) {
	apps := appsWithStatuses(enums.ApplicationStatusOffer, enums.ApplicationStatusApplied, enums.ApplicationStatusApplied)
	if got := Summarize(apps).SuccessRate; got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	apps = appsWithStatuses(enums.ApplicationStatusOffer, enums.ApplicationStatusInterview, enums.ApplicationStatusApplied)
	if got := Summarize(apps).SuccessRate; got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.Total != 0 || summary.SuccessRate != 0 {
		t.Fatalf("unexpected empty summary %+v", summary)
	}
	if len(summary.ByStatus) != len(enums.ApplicationStatuses()) {
		t.Fatalf("expected zeroed counts for every status")
	}
	if summary.Recent == nil || summary.TopPosition != "" {
		t.Fatalf("unexpected recent/top position %+v", summary)
	}
}

func TestSummarizeRecentAndTopPosition(t *testing.T) {
	apps := appsWithStatuses(
		enums.ApplicationStatusApplied, enums.ApplicationStatusApplied, enums.ApplicationStatusApplied,
		enums.ApplicationStatusApplied, enums.ApplicationStatusApplied, enums.ApplicationStatusApplied,
	)
	apps[0].Position = "Designer"
	apps[1].Position = "Designer"
	apps[2].Position = "Analyst"
	apps[3].Position = "Analyst"
	apps[4].Position = "Writer"
	apps[5].Position = "Writer"

	summary := Summarize(apps)
	if summary.TopPosition != "Designer" {
		t.Fatalf("ties must resolve to the first occurrence, got %q", summary.TopPosition)
	}
	if len(summary.Recent) != 5 {
		t.Fatalf("expected 5 recent, got %d", len(summary.Recent))
	}
	if !summary.Recent[0].CreatedAt.Equal(apps[5].CreatedAt) {
		t.Fatalf("recent must start with the newest record")
	}
}

func TestMostRecentByApplicationDate(t *testing.T) {
	apps := []Application{
		{Company: "a", ApplicationDate: "2026-01-05"},
		{Company: "b", ApplicationDate: "2026-03-01"},
		{Company: "c", ApplicationDate: "2025-12-31"},
	}
	got := MostRecentByApplicationDate(apps, 2)
	if len(got) != 2 || got[0].Company != "b" || got[1].Company != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
	if apps[0].Company != "a" {
		t.Fatal("input must not be reordered")
	}
}
