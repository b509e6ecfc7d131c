package gateway

import (
	"context"
	"encoding/json"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
)

// Envelope is one push-channel message. Data stays raw until the
// reconciler classifies the type; unknown types are dropped there.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventStream is a single server-to-client push stream of envelopes.
// C is closed when the stream ends for any reason; Err reports the
// terminal error, if any, after C is closed. Reconnecting is the
// consumer's responsibility.
type EventStream interface {
	C() <-chan Envelope
	Err() error
	Close()
}

// ProjectMeta carries the mutable descriptive fields of a project for a
// metadata patch. Nil fields are left untouched server-side.
type ProjectMeta struct {
	Title    *string `json:"title,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Gateway is the remote worker API surface consumed by the store. All
// write calls carry the session's worker credential; implementations wrap
// transport failures in domain.ErrRemoteCall.
type Gateway interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	PatchProjectMeta(ctx context.Context, id string, meta ProjectMeta) error
	RunNextStage(ctx context.Context, id string) error
	RetryStage(ctx context.Context, id string) error
	RunAutomatically(ctx context.Context, id string) error
	Cleanup(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string, hard bool) error
	HarvestProjects(ctx context.Context) error

	ListWorkflows(ctx context.Context) ([]domain.Workflow, error)
	CreateWorkflow(ctx context.Context, w domain.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	ListJobs(ctx context.Context) ([]domain.Job, error)
	CreateJob(ctx context.Context, workflowID string, params map[string]any, schedule *domain.Schedule) (string, error)
	UpdateJob(ctx context.Context, id string, params map[string]any, schedule *domain.Schedule) error
	DeleteJob(ctx context.Context, id string) error
	RunJob(ctx context.Context, id string) error

	ListAssets(ctx context.Context) ([]domain.Asset, error)
	ListLogs(ctx context.Context, limit int) ([]domain.LogEntry, error)

	OpenEvents(ctx context.Context) (EventStream, error)
}
