package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
	"github.com/DiegoPama01/FrameForge-sub000/internal/logger"
)

// ErrTerminal marks a pipeline action attempted on a cancelled project.
var ErrTerminal = errors.New("project is cancelled")

// Persister receives the merged state after every successful refresh so a
// restarted console has warm local data. Implementations must tolerate
// being called from the refresh path; failures are logged, never fatal.
type Persister interface {
	SaveSnapshot(ctx context.Context, projects []domain.Project, jobs []domain.Job, workflows []domain.Workflow, logs []domain.LogEntry) error
}

// Store is the in-memory authoritative client cache of projects, jobs,
// workflows, assets, and logs. Every mutation follows the same protocol:
// apply the intended change synchronously, issue the worker call, and on
// failure discard the guess with a silent full refresh before returning
// the error. One mutex serializes mutators, the event reconciler, and
// in-flight refreshes.
type Store struct {
	mu sync.Mutex
	gw gateway.Gateway

	projects  []domain.Project
	jobs      []domain.Job
	workflows []domain.Workflow
	assets    []domain.Asset
	logs      *LogBuffer
	selected  *domain.Project

	closed    bool
	persister Persister
}

// Option configures a Store.
type Option func(*Store)

// WithPersister attaches local snapshot persistence.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogCapacity overrides the log ring size.
func WithLogCapacity(n int) Option {
	return func(s *Store) { s.logs = NewLogBuffer(n) }
}

// New creates a Store backed by the given gateway.
// Parameters:
//   - gw: remote worker gateway used for refreshes and mutations.
//   - opts: optional configuration.
//
// Returns:
//   - *Store: empty store; call Refresh to populate it.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:   gw,
		logs: NewLogBuffer(DefaultLogCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close marks the store dead. Responses from in-flight refreshes and
// mutations arriving afterwards are dropped instead of applied.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Warm seeds the store from a persisted snapshot. Used on startup when
// the worker is unreachable so the console can serve last-known state;
// the next successful refresh overwrites everything.
func (s *Store) Warm(projects []domain.Project, jobs []domain.Job, workflows []domain.Workflow, logs []domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.projects = projects
	s.jobs = jobs
	s.workflows = workflows
	s.logs.Replace(logs)
}

// ===== Snapshot accessors =====

// Projects returns a copy of the cached projects.
func (s *Store) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Project(nil), s.projects...)
}

// Project returns the cached project with the given id.
func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

// Jobs returns a copy of the cached jobs.
func (s *Store) Jobs() []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Job, len(s.jobs))
	for i, j := range s.jobs {
		j.Parameters = j.CloneParameters()
		out[i] = j
	}
	return out
}

// Job returns the cached job with the given id.
func (s *Store) Job(id string) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			j.Parameters = j.CloneParameters()
			return j, true
		}
	}
	return domain.Job{}, false
}

// Workflows returns a copy of the cached workflow templates.
func (s *Store) Workflows() []domain.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Workflow(nil), s.workflows...)
}

// Workflow returns the cached workflow with the given id.
func (s *Store) Workflow(id string) (domain.Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workflows {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Workflow{}, false
}

// Assets returns a copy of the cached asset records.
func (s *Store) Assets() []domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Asset(nil), s.assets...)
}

// Logs returns the retained log entries, oldest first.
func (s *Store) Logs() []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.All()
}

// LogsForProject returns the retained log entries for one project.
func (s *Store) LogsForProject(projectID string) []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.ForProject(projectID)
}

// ===== Selection =====

// Select marks the project with the given id as the current selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			cp := p
			s.selected = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Selected returns the currently selected project, if any.
func (s *Store) Selected() (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Project{}, false
	}
	return *s.selected, true
}

// ===== Refresh =====

// Refresh re-fetches all collections from the worker and unconditionally
// overwrites local state, discarding any unconfirmed optimistic guesses.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//
// Returns:
//   - error: non-nil if any fetch fails; local state is left unchanged.
func (s *Store) Refresh(ctx context.Context) error {
	projects, err := s.gw.ListProjects(ctx)
	if err != nil {
		return err
	}
	jobs, err := s.gw.ListJobs(ctx)
	if err != nil {
		return err
	}
	workflows, err := s.gw.ListWorkflows(ctx)
	if err != nil {
		return err
	}
	assets, err := s.gw.ListAssets(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		// The owning session went away while the fetch was in flight.
		s.mu.Unlock()
		return nil
	}
	s.projects = projects
	s.jobs = jobs
	s.workflows = workflows
	s.assets = assets
	s.swapSelectionLocked()
	logSnapshot := s.logs.All()
	s.mu.Unlock()

	s.persist(ctx, projects, jobs, workflows, logSnapshot)
	return nil
}

// swapSelectionLocked re-points the selection at the refreshed record
// with the same id. The swap happens only when the contents actually
// changed, compared by full structural equality, so consumers observe
// every field change but keep a stable reference otherwise. A selection
// missing from the new snapshot is dropped.
func (s *Store) swapSelectionLocked() {
	if s.selected == nil {
		return
	}
	for _, p := range s.projects {
		if p.ID != s.selected.ID {
			continue
		}
		if !p.Equal(*s.selected) {
			cp := p
			s.selected = &cp
		}
		return
	}
	s.selected = nil
}

// refreshSilent discards a failed optimistic guess. The refresh error
// itself is only logged; the caller already has the mutation error.
func (s *Store) refreshSilent(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.CtxWarn(ctx, "reconciling refresh failed: %v", err)
	}
}

// SeedLogs warms the log ring from the worker's persisted log history.
func (s *Store) SeedLogs(ctx context.Context, limit int) error {
	entries, err := s.gw.ListLogs(ctx, limit)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.logs.Replace(entries)
	return nil
}

func (s *Store) persist(ctx context.Context, projects []domain.Project, jobs []domain.Job, workflows []domain.Workflow, logs []domain.LogEntry) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveSnapshot(ctx, projects, jobs, workflows, logs); err != nil {
		logger.CtxWarn(ctx, "persisting state snapshot failed: %v", err)
	}
}

// ===== Mutations =====

// mutate runs the optimistic-apply / confirm-or-reconcile protocol.
// apply runs under the store lock and may reject with a precondition
// error; call is the worker write. A failed call triggers a silent full
// refresh before the error is returned.
func (s *Store) mutate(ctx context.Context, apply func() error, call func(context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if apply != nil {
		if err := apply(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	if err := call(ctx); err != nil {
		s.refreshSilent(ctx)
		return err
	}
	return nil
}

func (s *Store) projectLocked(id string) (int, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
}

func (s *Store) jobLocked(id string) (int, error) {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
}

// patchProjectLocked mutates a project in place and mirrors the change
// into the selection when it points at the same project.
func (s *Store) patchProjectLocked(i int, patch func(*domain.Project)) {
	patch(&s.projects[i])
	if s.selected != nil && s.selected.ID == s.projects[i].ID {
		cp := s.projects[i]
		s.selected = &cp
	}
}

// markProcessingLocked is the shared optimistic guess of the pipeline
// actions: the next authoritative signal must overwrite it.
func (s *Store) markProcessingLocked(id string) error {
	i, err := s.projectLocked(id)
	if err != nil {
		return err
	}
	if !s.projects[i].Actionable() {
		return fmt.Errorf("%w: %s", ErrTerminal, id)
	}
	s.patchProjectLocked(i, func(p *domain.Project) {
		p.Status = domain.StatusProcessing
		p.UpdatedAt = time.Now().UTC()
	})
	return nil
}

// UpdateProjectMeta patches a project's descriptive fields, applying the
// change locally before the worker confirms it.
func (s *Store) UpdateProjectMeta(ctx context.Context, id string, meta gateway.ProjectMeta) error {
	return s.mutate(ctx,
		func() error {
			i, err := s.projectLocked(id)
			if err != nil {
				return err
			}
			s.patchProjectLocked(i, func(p *domain.Project) {
				if meta.Title != nil {
					p.Title = *meta.Title
				}
				if meta.Category != nil {
					p.Category = *meta.Category
				}
				p.UpdatedAt = time.Now().UTC()
			})
			return nil
		},
		func(ctx context.Context) error {
			return s.gw.PatchProjectMeta(ctx, id, meta)
		},
	)
}

// RunNextStage advances the project to its next pipeline stage.
func (s *Store) RunNextStage(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error { return s.markProcessingLocked(id) },
		func(ctx context.Context) error { return s.gw.RunNextStage(ctx, id) },
	)
}

// RetryStage re-runs the project's current stage after an error.
func (s *Store) RetryStage(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error { return s.markProcessingLocked(id) },
		func(ctx context.Context) error { return s.gw.RetryStage(ctx, id) },
	)
}

// RunAutomatically runs all remaining stages without further prompting.
func (s *Store) RunAutomatically(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error { return s.markProcessingLocked(id) },
		func(ctx context.Context) error { return s.gw.RunAutomatically(ctx, id) },
	)
}

// CleanupProject removes the project's intermediate artifacts on the
// worker. No optimistic local change: artifacts are not cached.
func (s *Store) CleanupProject(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error {
			_, err := s.projectLocked(id)
			return err
		},
		func(ctx context.Context) error { return s.gw.Cleanup(ctx, id) },
	)
}

// DeleteProject deletes a project. A hard delete removes it from the
// local set immediately; a soft delete (cancel) leaves it in place until
// the next refresh shows its Cancelled state.
func (s *Store) DeleteProject(ctx context.Context, id string, hard bool) error {
	return s.mutate(ctx,
		func() error {
			i, err := s.projectLocked(id)
			if err != nil {
				return err
			}
			if hard {
				s.projects = append(s.projects[:i], s.projects[i+1:]...)
				if s.selected != nil && s.selected.ID == id {
					s.selected = nil
				}
			}
			return nil
		},
		func(ctx context.Context) error { return s.gw.DeleteProject(ctx, id, hard) },
	)
}

// Harvest asks the worker to discover new source content, then refreshes
// to pick up any new projects.
func (s *Store) Harvest(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.mu.Unlock()

	if err := s.gw.HarvestProjects(ctx); err != nil {
		return err
	}
	s.refreshSilent(ctx)
	return nil
}

// CreateJob validates the schedule, registers the job locally under a
// provisional id, and launches it on the worker. On success the
// provisional id is replaced with the server-assigned one.
func (s *Store) CreateJob(ctx context.Context, workflowID string, params map[string]any, schedule *domain.Schedule) (string, error) {
	if schedule != nil {
		if err := schedule.Validate(); err != nil {
			return "", err
		}
	}

	tempID := "pending_" + uuid.NewString()
	err := s.mutate(ctx,
		func() error {
			found := false
			for _, w := range s.workflows {
				if w.ID == workflowID {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: workflow %s", domain.ErrNotFound, workflowID)
			}
			job := domain.Job{
				ID:         tempID,
				WorkflowID: workflowID,
				Parameters: params,
				Status:     domain.JobStatusPending,
				CreatedAt:  time.Now().UTC(),
			}
			if schedule != nil {
				job.Schedule = *schedule
			}
			s.jobs = append(s.jobs, job)
			return nil
		},
		func(ctx context.Context) error {
			serverID, err := s.gw.CreateJob(ctx, workflowID, params, schedule)
			if err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed {
				return nil
			}
			for i := range s.jobs {
				if s.jobs[i].ID == tempID {
					s.jobs[i].ID = serverID
					break
				}
			}
			tempID = serverID
			return nil
		},
	)
	if err != nil {
		return "", err
	}
	return tempID, nil
}

// UpdateJob patches a job's parameters and schedule.
func (s *Store) UpdateJob(ctx context.Context, id string, params map[string]any, schedule *domain.Schedule) error {
	if schedule != nil {
		if err := schedule.Validate(); err != nil {
			return err
		}
	}
	return s.mutate(ctx,
		func() error {
			i, err := s.jobLocked(id)
			if err != nil {
				return err
			}
			if params != nil {
				s.jobs[i].Parameters = params
			}
			if schedule != nil {
				s.jobs[i].Schedule = *schedule
			}
			return nil
		},
		func(ctx context.Context) error { return s.gw.UpdateJob(ctx, id, params, schedule) },
	)
}

// DeleteJob removes a job, dropping it from the local set before the
// worker call resolves.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error {
			i, err := s.jobLocked(id)
			if err != nil {
				return err
			}
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return nil
		},
		func(ctx context.Context) error { return s.gw.DeleteJob(ctx, id) },
	)
}

// RunJob triggers an immediate execution, optimistically marking the job
// Running until the worker reports the authoritative state.
func (s *Store) RunJob(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error {
			i, err := s.jobLocked(id)
			if err != nil {
				return err
			}
			s.jobs[i].Status = domain.JobStatusRunning
			return nil
		},
		func(ctx context.Context) error { return s.gw.RunJob(ctx, id) },
	)
}

// CreateWorkflow registers a workflow template.
func (s *Store) CreateWorkflow(ctx context.Context, w domain.Workflow) error {
	return s.mutate(ctx,
		func() error {
			s.workflows = append(s.workflows, w)
			return nil
		},
		func(ctx context.Context) error { return s.gw.CreateWorkflow(ctx, w) },
	)
}

// DeleteWorkflow removes a workflow template.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	return s.mutate(ctx,
		func() error {
			for i := range s.workflows {
				if s.workflows[i].ID == id {
					s.workflows = append(s.workflows[:i], s.workflows[i+1:]...)
					return nil
				}
			}
			return fmt.Errorf("%w: workflow %s", domain.ErrNotFound, id)
		},
		func(ctx context.Context) error { return s.gw.DeleteWorkflow(ctx, id) },
	)
}
