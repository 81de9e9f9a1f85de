package applications

import (
	"testing"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

func TestFilterApply(t *testing.T) {
	apps := []Application{
		{Company: "Acme", Position: "Backend Engineer", Location: "Berlin", Status: enums.ApplicationStatusApplied},
		{Company: "Globex", Position: "Designer", Location: "Remote", Status: enums.ApplicationStatusInterview},
		{Company: "Initech", Position: "Engineer", Location: "Austin", Status: enums.ApplicationStatusOffer},
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter", Filter{}, []string{"Acme", "Globex", "Initech"}},
		{"all status", Filter{Status: "all"}, []string{"Acme", "Globex", "Initech"}},
		{"company search", Filter{Search: "glob"}, []string{"Globex"}},
		{"position search case insensitive", Filter{Search: "ENGINEER"}, []string{"Acme", "Initech"}},
		{"location search", Filter{Search: "remote"}, []string{"Globex"}},
		{"status only", Filter{Status: "offer"}, []string{"Initech"}},
		{"search and status", Filter{Search: "engineer", Status: "applied"}, []string{"Acme"}},
		{"no match", Filter{Search: "zzz"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Apply(apps)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %d records", tc.want, len(got))
			}
			for i, company := range tc.want {
				if got[i].Company != company {
					t.Fatalf("position %d: expected %s, got %s", i, company, got[i].Company)
				}
			}
		})
	}
}
