package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
)

func seededMock() *gateway.Mock {
	m := gateway.NewMock()
	m.Projects = []domain.Project{
		{ID: "p1", Title: "Alpine Documentary", Status: domain.StatusIdle, Stage: domain.StageSourceDiscovery, UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "p2", Title: "City Shorts", Status: domain.StatusSuccess, Stage: domain.StageThumbnailForge, UpdatedAt: time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)},
	}
	m.Workflows = []domain.Workflow{
		{ID: "wf1", Name: "Full Pipeline"},
	}
	m.Jobs = []domain.Job{
		{ID: "j1", WorkflowID: "wf1", Status: domain.JobStatusPending},
	}
	return m
}

func newTestStore(t *testing.T) (*Store, *gateway.Mock) {
	t.Helper()
	m := seededMock()
	s := New(m)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}
	return s, m
}

func TestRefreshPopulatesAllCollections(t *testing.T) {
	s, _ := newTestStore(t)

	if got := len(s.Projects()); got != 2 {
		t.Errorf("projects = %d, want 2", got)
	}
	if got := len(s.Jobs()); got != 1 {
		t.Errorf("jobs = %d, want 1", got)
	}
	if got := len(s.Workflows()); got != 1 {
		t.Errorf("workflows = %d, want 1", got)
	}
}

func TestRefreshFailureLeavesStateUntouched(t *testing.T) {
	s, m := newTestStore(t)

	m.Err = errors.New("worker down")
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := len(s.Projects()); got != 2 {
		t.Errorf("projects after failed refresh = %d, want 2", got)
	}
}

func TestMutationSuccessKeepsOptimisticState(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.RunNextStage(context.Background(), "p1"); err != nil {
		t.Fatalf("RunNextStage: %v", err)
	}
	p, _ := s.Project("p1")
	if p.Status != domain.StatusProcessing {
		t.Errorf("status = %q, want %q", p.Status, domain.StatusProcessing)
	}
}

func TestMutationFailureReconcilesAgainstWorker(t *testing.T) {
	// Fail the write itself, then let the recovery refresh succeed: the
	// optimistic Processing guess must be rolled back to worker truth.
	failing := &flakyGateway{Mock: seededMock(), failOps: map[string]bool{"RunNextStage": true}}
	s := New(failing)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	err := s.RunNextStage(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected mutation error")
	}

	p, ok := s.Project("p1")
	if !ok {
		t.Fatal("p1 missing after reconcile")
	}
	if p.Status != domain.StatusIdle {
		t.Errorf("status after reconcile = %q, want %q", p.Status, domain.StatusIdle)
	}
}

// flakyGateway fails selected write operations while leaving reads intact,
// so the recovery refresh can still fetch worker truth.
type flakyGateway struct {
	*gateway.Mock
	failOps map[string]bool
}

func (f *flakyGateway) RunNextStage(ctx context.Context, id string) error {
	if f.failOps["RunNextStage"] {
		return domain.ErrRemoteCall
	}
	return f.Mock.RunNextStage(ctx, id)
}

func (f *flakyGateway) DeleteJob(ctx context.Context, id string) error {
	if f.failOps["DeleteJob"] {
		return domain.ErrRemoteCall
	}
	return f.Mock.DeleteJob(ctx, id)
}

func TestDeleteJobOptimisticRemoval(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.DeleteJob(context.Background(), "j1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, ok := s.Job("j1"); ok {
		t.Error("job still present after delete")
	}
}

func TestDeleteJobFailureRestoresJob(t *testing.T) {
	m := seededMock()
	failing := &flakyGateway{Mock: m, failOps: map[string]bool{"DeleteJob": true}}
	s := New(failing)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.DeleteJob(context.Background(), "j1"); err == nil {
		t.Fatal("expected delete error")
	}
	if _, ok := s.Job("j1"); !ok {
		t.Error("job not restored by recovery refresh")
	}
}

func TestDeleteProjectHardRemovesLocally(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Select("p1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.DeleteProject(context.Background(), "p1", true); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, ok := s.Project("p1"); ok {
		t.Error("project still present after hard delete")
	}
	if _, ok := s.Selected(); ok {
		t.Error("selection should be cleared by hard delete")
	}
}

func TestDeleteProjectSoftKeepsLocalEntry(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.DeleteProject(context.Background(), "p1", false); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, ok := s.Project("p1"); !ok {
		t.Error("soft delete should leave the project until the next refresh")
	}
}

func TestCreateJobInvalidScheduleSkipsWorker(t *testing.T) {
	s, m := newTestStore(t)

	before := m.CallCount("CreateJob")
	_, err := s.CreateJob(context.Background(), "wf1", nil, &domain.Schedule{Interval: domain.IntervalDaily})
	if !errors.Is(err, domain.ErrInvalidSchedule) {
		t.Fatalf("error = %v, want ErrInvalidSchedule", err)
	}
	if m.CallCount("CreateJob") != before {
		t.Error("invalid schedule must be rejected before any worker call")
	}
	if got := len(s.Jobs()); got != 1 {
		t.Errorf("jobs = %d, want 1 (no provisional entry)", got)
	}
}

func TestCreateJobSwapsProvisionalID(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.CreateJob(context.Background(), "wf1", map[string]any{"lang": "de"}, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if strings.HasPrefix(id, "pending_") {
		t.Errorf("returned id %q still provisional", id)
	}
	if _, ok := s.Job(id); !ok {
		t.Errorf("job %q not found under server id", id)
	}
	for _, j := range s.Jobs() {
		if strings.HasPrefix(j.ID, "pending_") {
			t.Errorf("provisional id %q left behind", j.ID)
		}
	}
}

func TestCreateJobUnknownWorkflow(t *testing.T) {
	s, m := newTestStore(t)

	before := m.CallCount("CreateJob")
	_, err := s.CreateJob(context.Background(), "missing", nil, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if m.CallCount("CreateJob") != before {
		t.Error("unknown workflow must be rejected before any worker call")
	}
}

func TestPipelineActionOnCancelledProject(t *testing.T) {
	s, m := newTestStore(t)

	m.Projects[0].Status = domain.StatusCancelled
	m.Projects[0].Stage = domain.StageCancelled
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	before := m.CallCount("RunNextStage")
	err := s.RunNextStage(context.Background(), "p1")
	if !errors.Is(err, ErrTerminal) {
		t.Fatalf("error = %v, want ErrTerminal", err)
	}
	if m.CallCount("RunNextStage") != before {
		t.Error("terminal project must not reach the worker")
	}
}

func TestSelectionSwapOnlyOnChange(t *testing.T) {
	s, m := newTestStore(t)

	if err := s.Select("p2"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	// Identical refresh: contents unchanged, selection value stable.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	sel, ok := s.Selected()
	if !ok || sel.Title != "City Shorts" {
		t.Fatalf("selection lost on identical refresh")
	}

	// Changed refresh: selection must show the new contents.
	m.Projects[1].Title = "City Shorts (Recut)"
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	sel, ok = s.Selected()
	if !ok {
		t.Fatal("selection dropped")
	}
	if sel.Title != "City Shorts (Recut)" {
		t.Errorf("selection title = %q, want updated title", sel.Title)
	}
}

func TestSelectionDroppedWhenProjectDisappears(t *testing.T) {
	s, m := newTestStore(t)

	if err := s.Select("p1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Projects = m.Projects[1:]
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := s.Selected(); ok {
		t.Error("selection should be dropped when the project vanishes upstream")
	}
}

func TestClosedStoreRejectsMutations(t *testing.T) {
	s, _ := newTestStore(t)
	s.Close()

	if err := s.RunNextStage(context.Background(), "p1"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("error = %v, want ErrSessionClosed", err)
	}
	if err := s.Harvest(context.Background()); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("Harvest error = %v, want ErrSessionClosed", err)
	}
}

func TestClosedStoreDropsLateRefresh(t *testing.T) {
	s, m := newTestStore(t)

	m.Projects = append(m.Projects, domain.Project{ID: "p3", Title: "Late"})
	s.Close()

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := len(s.Projects()); got != 2 {
		t.Errorf("projects = %d, closed store must not apply late responses", got)
	}
}

func TestSeedLogsKeepsMostRecent(t *testing.T) {
	m := seededMock()
	for i := 0; i < 20; i++ {
		m.Logs = append(m.Logs, domain.LogEntry{Message: "seed", Timestamp: time.Now().Format(time.RFC3339)})
	}
	s := New(m, WithLogCapacity(10))
	if err := s.SeedLogs(context.Background(), 0); err != nil {
		t.Fatalf("SeedLogs: %v", err)
	}
	if got := len(s.Logs()); got != 10 {
		t.Errorf("seeded logs = %d, want capacity 10", got)
	}
}

func TestUpdateProjectMetaPartialPatch(t *testing.T) {
	s, _ := newTestStore(t)

	title := "Alpine Documentary: Director's Cut"
	if err := s.UpdateProjectMeta(context.Background(), "p1", gateway.ProjectMeta{Title: &title}); err != nil {
		t.Fatalf("UpdateProjectMeta: %v", err)
	}
	p, _ := s.Project("p1")
	if p.Title != title {
		t.Errorf("title = %q, want %q", p.Title, title)
	}
	if p.Category != "" {
		t.Errorf("category changed by partial patch: %q", p.Category)
	}
}
