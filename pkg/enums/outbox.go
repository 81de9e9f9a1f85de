package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateUser OutboxAggregateType = "user"
)

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateUser
}

// OutboxEventType identifies the audit event kind.
type OutboxEventType string

const (
	EventUserRoleChanged       OutboxEventType = "user_role_changed"
	EventUserActivationChanged OutboxEventType = "user_activation_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventUserRoleChanged,
	EventUserActivationChanged,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
