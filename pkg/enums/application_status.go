package enums

import (
	"fmt"
	"strings"
)

// ApplicationStatus tracks where a job application stands.
type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusOffer     ApplicationStatus = "offer"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

// ApplicationStatuses returns the statuses in display order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(validApplicationStatuses))
	copy(out, validApplicationStatuses)
	return out
}

// String implements fmt.Stringer.
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApplicationStatus.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApplicationStatus converts raw input into an ApplicationStatus.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid application status %q", value)
}
