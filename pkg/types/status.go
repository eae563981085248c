package types

import "strings"

// Status is the classified health of an endpoint.
type Status string

const (
	StatusUp      Status = "up"
	StatusSlow    Status = "slow"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// ParseStatus normalizes a status string. Values outside the known set map to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUp:
		return StatusUp
	case StatusSlow:
		return StatusSlow
	case StatusDown:
		return StatusDown
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	return string(s)
}

// Known reports whether the status is one of up, slow or down.
func (s Status) Known() bool {
	switch s {
	case StatusUp, StatusSlow, StatusDown:
		return true
	}
	return false
}
