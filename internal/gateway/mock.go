package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
)

// Mock implements Gateway with in-memory collections. It backs store and
// session tests and doubles as an offline fixture for the console.
type Mock struct {
	mu sync.Mutex

	Projects  []domain.Project
	Jobs      []domain.Job
	Workflows []domain.Workflow
	Assets    []domain.Asset
	Logs      []domain.LogEntry

	// Err, when set, is returned by every call; assign before a mutation
	// to simulate a worker failure.
	Err error

	// Calls records operation names in invocation order.
	Calls []string

	nextID int

	events     chan Envelope
	eventsOnce sync.Once
}

// NewMock creates an empty mock gateway.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, op)
	return m.Err
}

// AddProject appends a project under the mock's lock, safe to call while
// background refreshes are reading.
func (m *Mock) AddProject(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Projects = append(m.Projects, p)
}

// CallCount returns how many times op was invoked.
func (m *Mock) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *Mock) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if err := m.record("ListProjects"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Project(nil), m.Projects...), nil
}

func (m *Mock) GetProject(ctx context.Context, id string) (domain.Project, error) {
	if err := m.record("GetProject"); err != nil {
		return domain.Project{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
}

func (m *Mock) PatchProjectMeta(ctx context.Context, id string, meta ProjectMeta) error {
	if err := m.record("PatchProjectMeta"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Projects {
		if m.Projects[i].ID != id {
			continue
		}
		if meta.Title != nil {
			m.Projects[i].Title = *meta.Title
		}
		if meta.Category != nil {
			m.Projects[i].Category = *meta.Category
		}
		return nil
	}
	return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
}

func (m *Mock) RunNextStage(ctx context.Context, id string) error {
	return m.record("RunNextStage")
}

func (m *Mock) RetryStage(ctx context.Context, id string) error {
	return m.record("RetryStage")
}

func (m *Mock) RunAutomatically(ctx context.Context, id string) error {
	return m.record("RunAutomatically")
}

func (m *Mock) Cleanup(ctx context.Context, id string) error {
	return m.record("Cleanup")
}

func (m *Mock) DeleteProject(ctx context.Context, id string, hard bool) error {
	if err := m.record("DeleteProject"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Projects {
		if m.Projects[i].ID != id {
			continue
		}
		if hard {
			m.Projects = append(m.Projects[:i], m.Projects[i+1:]...)
		} else {
			m.Projects[i].Status = domain.StatusCancelled
			m.Projects[i].Stage = domain.StageCancelled
		}
		return nil
	}
	return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
}

func (m *Mock) HarvestProjects(ctx context.Context) error {
	return m.record("HarvestProjects")
}

func (m *Mock) ListWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	if err := m.record("ListWorkflows"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Workflow(nil), m.Workflows...), nil
}

func (m *Mock) CreateWorkflow(ctx context.Context, w domain.Workflow) error {
	if err := m.record("CreateWorkflow"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workflows = append(m.Workflows, w)
	return nil
}

func (m *Mock) DeleteWorkflow(ctx context.Context, id string) error {
	if err := m.record("DeleteWorkflow"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Workflows {
		if m.Workflows[i].ID == id {
			m.Workflows = append(m.Workflows[:i], m.Workflows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: workflow %s", domain.ErrNotFound, id)
}

func (m *Mock) ListJobs(ctx context.Context) ([]domain.Job, error) {
	if err := m.record("ListJobs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Job(nil), m.Jobs...), nil
}

func (m *Mock) CreateJob(ctx context.Context, workflowID string, params map[string]any, schedule *domain.Schedule) (string, error) {
	if err := m.record("CreateJob"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("job_%d", m.nextID)
	job := domain.Job{ID: id, WorkflowID: workflowID, Parameters: params, Status: domain.JobStatusPending}
	if schedule != nil {
		job.Schedule = *schedule
	}
	m.Jobs = append(m.Jobs, job)
	return id, nil
}

func (m *Mock) UpdateJob(ctx context.Context, id string, params map[string]any, schedule *domain.Schedule) error {
	if err := m.record("UpdateJob"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Jobs {
		if m.Jobs[i].ID != id {
			continue
		}
		if params != nil {
			m.Jobs[i].Parameters = params
		}
		if schedule != nil {
			m.Jobs[i].Schedule = *schedule
		}
		return nil
	}
	return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
}

func (m *Mock) DeleteJob(ctx context.Context, id string) error {
	if err := m.record("DeleteJob"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Jobs {
		if m.Jobs[i].ID == id {
			m.Jobs = append(m.Jobs[:i], m.Jobs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
}

func (m *Mock) RunJob(ctx context.Context, id string) error {
	return m.record("RunJob")
}

func (m *Mock) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	if err := m.record("ListAssets"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Asset(nil), m.Assets...), nil
}

func (m *Mock) ListLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if err := m.record("ListLogs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := append([]domain.LogEntry(nil), m.Logs...)
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs, nil
}

// OpenEvents returns a stream fed by Emit. The same stream is reused
// across calls within one mock.
func (m *Mock) OpenEvents(ctx context.Context) (EventStream, error) {
	if err := m.record("OpenEvents"); err != nil {
		return nil, err
	}
	m.eventsOnce.Do(func() {
		m.events = make(chan Envelope, 64)
	})
	return &mockStream{ch: m.events}, nil
}

// Emit pushes an envelope to the mock event stream. OpenEvents must have
// been called first.
func (m *Mock) Emit(env Envelope) {
	m.events <- env
}

// CloseEvents ends the mock event stream.
func (m *Mock) CloseEvents() {
	close(m.events)
}

type mockStream struct {
	ch chan Envelope
}

func (s *mockStream) C() <-chan Envelope { return s.ch }
func (s *mockStream) Err() error         { return nil }
func (s *mockStream) Close()             {}
