package domain

import "strings"

// Status represents the execution state of a Project at its current stage.
// Values include StatusIdle, StatusProcessing, StatusSuccess, StatusError,
// and StatusCancelled.
type Status string

const (
	StatusIdle       Status = "Idle"
	StatusProcessing Status = "Processing"
	StatusSuccess    Status = "Success"
	StatusError      Status = "Error"
	StatusCancelled  Status = "Cancelled"
)

// NormalizeStatus maps a raw status label to a canonical Status.
// Unknown or empty input yields StatusIdle.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "idle":
		return StatusIdle
	case "processing":
		return StatusProcessing
	case "success":
		return StatusSuccess
	case "error":
		return StatusError
	case "cancelled":
		return StatusCancelled
	default:
		return StatusIdle
	}
}

// Terminal reports whether the status disables further pipeline actions.
func (s Status) Terminal() bool {
	return s == StatusCancelled
}
