package enums

import "fmt"

// MilkSession identifies which daily collection round a transaction belongs to.
type MilkSession string

const (
	SessionMorning MilkSession = "Morning"
	SessionEvening MilkSession = "Evening"
)

var validMilkSessions = []MilkSession{
	SessionMorning,
	SessionEvening,
}

// String implements fmt.Stringer.
func (s MilkSession) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MilkSession.
func (s MilkSession) IsValid() bool {
	for _, candidate := range validMilkSessions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMilkSession converts raw input into a MilkSession.
func ParseMilkSession(value string) (MilkSession, error) {
	for _, candidate := range validMilkSessions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session %q", value)
}
