package enums

import (
	"fmt"
	"strings"
)

// Urgency signals how quickly a blood request must be served.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

var validUrgencies = []Urgency{
	UrgencyNormal,
	UrgencyUrgent,
	UrgencyCritical,
}

// String implements fmt.Stringer.
func (u Urgency) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Urgency.
func (u Urgency) IsValid() bool {
	for _, candidate := range validUrgencies {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUrgency converts raw input into an Urgency. Blank input yields UrgencyNormal.
func ParseUrgency(value string) (Urgency, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return UrgencyNormal, nil
	}
	for _, candidate := range validUrgencies {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}
