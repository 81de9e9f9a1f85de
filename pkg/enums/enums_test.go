package enums

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":       RoleAdmin,
		" Moderator ": RoleModerator,
		"USER":        RoleUser,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		if err != nil {
			t.Fatalf("ParseRole(%q) unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", input, got, want)
		}
	}

	for _, bad := range []string{"", "superadmin", "owner"} {
		if _, err := ParseRole(bad); err == nil {
			t.Fatalf("ParseRole(%q) expected error", bad)
		}
		if Role(bad).IsValid() {
			t.Fatalf("Role(%q) should not be valid", bad)
		}
	}
}

func TestApplicationStatuses(t *testing.T) {
	statuses := ApplicationStatuses()
	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}
	statuses[0] = "mutated"
	if ApplicationStatuses()[0] != ApplicationStatusApplied {
		t.Fatal("ApplicationStatuses must return a copy")
	}

	got, err := ParseApplicationStatus("Interview")
	if err != nil || got != ApplicationStatusInterview {
		t.Fatalf("unexpected parse result %q, %v", got, err)
	}
	if _, err := ParseApplicationStatus("ghosted"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestOutboxEventTypes(t *testing.T) {
	if !EventUserRoleChanged.IsValid() || !EventUserActivationChanged.IsValid() {
		t.Fatal("known event types must be valid")
	}
	if OutboxEventType("application_archived").IsValid() {
		t.Fatal("unknown event type must be invalid")
	}
	if !AggregateUser.IsValid() {
		t.Fatal("user aggregate must be valid")
	}
}
