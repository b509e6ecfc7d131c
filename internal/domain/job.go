package domain

import (
	"strings"
	"time"
)

// JobStatus represents the status of a workflow job.
// Values include JobStatusPending, JobStatusRunning, JobStatusCompleted,
// and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusRunning   JobStatus = "Running"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusFailed    JobStatus = "Failed"
)

// NormalizeJobStatus maps a raw job status label to a canonical JobStatus.
// Unknown or empty input yields JobStatusPending.
func NormalizeJobStatus(raw string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return JobStatusPending
	case "running":
		return JobStatusRunning
	case "completed":
		return JobStatusCompleted
	case "failed":
		return JobStatusFailed
	default:
		return JobStatusPending
	}
}

// Job represents one scheduled or on-demand invocation of a Workflow.
// WorkflowID is a weak reference: lookups only, never ownership.
type Job struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Parameters map[string]any `json:"parameters"`
	Status     JobStatus      `json:"status"`
	// Progress is a percentage 0-100, server-authoritative; monotonicity
	// while Running is not enforced client-side.
	Progress  int       `json:"progress"`
	Schedule  Schedule  `json:"schedule"`
	LastRun   string    `json:"last_run,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CloneParameters returns a copy of the parameter map so snapshot readers
// cannot mutate cached state.
func (j Job) CloneParameters() map[string]any {
	if j.Parameters == nil {
		return nil
	}
	out := make(map[string]any, len(j.Parameters))
	for k, v := range j.Parameters {
		out[k] = v
	}
	return out
}
