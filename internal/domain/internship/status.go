package internship

import "strings"

// Status represents the lifecycle stage of an internship.
type Status string

const (
	StatusNew      Status = "new"
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
)

// Action is a user gesture that may change an internship's status.
type Action string

const (
	ActionApply  Action = "apply"
	ActionReject Action = "reject"
	ActionDelete Action = "delete"
)

// ParseStatus canonicalizes a stored or user supplied status value.
// Unrecognized values are returned lowercased so callers can still display
// them; an empty value means new.
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusNew
	}
	return Status(s)
}

// Known reports whether s is one of the three defined statuses.
func (s Status) Known() bool {
	switch ParseStatus(string(s)) {
	case StatusNew, StatusApplied, StatusRejected:
		return true
	}
	return false
}

// Priority orders statuses for display: new first, unrecognized last.
func (s Status) Priority() int {
	switch ParseStatus(string(s)) {
	case StatusNew:
		return 0
	case StatusApplied:
		return 1
	case StatusRejected:
		return 2
	default:
		return 3
	}
}

// Title returns the display form, e.g. "Applied".
func (s Status) Title() string {
	c := ParseStatus(string(s))
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// NextStatus applies action to current.
//
// Rejecting an already rejected internship returns rejected with no error;
// callers treat next == current as a no-op. Delete always yields rejected,
// the soft reject that precedes removal.
func NextStatus(current Status, action Action) (Status, error) {
	current = ParseStatus(string(current))
	switch action {
	case ActionApply:
		if current == StatusNew {
			return StatusApplied, nil
		}
	case ActionReject:
		switch current {
		case StatusNew, StatusApplied, StatusRejected:
			return StatusRejected, nil
		}
	case ActionDelete:
		return StatusRejected, nil
	}
	return current, ErrInvalidTransition
}
