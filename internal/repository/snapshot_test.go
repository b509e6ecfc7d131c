package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/config"
	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "snapshot.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewSnapshotRepository(db)
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	projects := []domain.Project{
		{ID: "p1", Title: "Alpine Documentary", Status: domain.StatusSuccess, Stage: domain.StageThumbnailForge, UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	jobs := []domain.Job{
		{
			ID:         "j1",
			WorkflowID: "wf1",
			Parameters: map[string]any{"lang": "de"},
			Status:     domain.JobStatusRunning,
			Progress:   40,
			Schedule:   domain.Schedule{Interval: domain.IntervalDaily, Time: "06:00"},
			CreatedAt:  time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	workflows := []domain.Workflow{
		{
			ID:   "wf1",
			Name: "Full Pipeline",
			Tags: []string{"video"},
			Nodes: []domain.Node{
				{ID: "n1", Label: "Discovery", Parameters: []domain.ParameterSpec{{ID: "lang", Type: "select"}}},
			},
		},
	}
	logs := []domain.LogEntry{
		{Timestamp: "2026-03-01T10:00:00Z", Level: domain.LogLevelInfo, Message: "started", ProjectID: "p1"},
		{Timestamp: "2026-03-01T10:05:00Z", Level: domain.LogLevelSuccess, Message: "done", ProjectID: "p1"},
	}

	if err := repo.SaveSnapshot(ctx, projects, jobs, workflows, logs); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	gotProjects, err := repo.LoadProjects(ctx)
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if len(gotProjects) != 1 {
		t.Fatalf("projects = %d, want 1", len(gotProjects))
	}
	if gotProjects[0].Stage != domain.StageThumbnailForge {
		t.Errorf("stage = %q", gotProjects[0].Stage)
	}

	gotJobs, err := repo.LoadJobs(ctx)
	if err != nil {
		t.Fatalf("LoadJobs: %v", err)
	}
	if len(gotJobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(gotJobs))
	}
	if gotJobs[0].Parameters["lang"] != "de" {
		t.Errorf("parameters = %v", gotJobs[0].Parameters)
	}
	if gotJobs[0].Schedule.Interval != domain.IntervalDaily || gotJobs[0].Schedule.Time != "06:00" {
		t.Errorf("schedule = %+v", gotJobs[0].Schedule)
	}

	gotWorkflows, err := repo.LoadWorkflows(ctx)
	if err != nil {
		t.Fatalf("LoadWorkflows: %v", err)
	}
	if len(gotWorkflows) != 1 || len(gotWorkflows[0].Nodes) != 1 {
		t.Fatalf("workflows = %+v", gotWorkflows)
	}
	if gotWorkflows[0].Nodes[0].Parameters[0].ID != "lang" {
		t.Errorf("node parameters = %+v", gotWorkflows[0].Nodes[0].Parameters)
	}

	gotLogs, err := repo.LoadLogs(ctx)
	if err != nil {
		t.Fatalf("LoadLogs: %v", err)
	}
	if len(gotLogs) != 2 {
		t.Fatalf("logs = %d, want 2", len(gotLogs))
	}
	if gotLogs[0].Message != "started" || gotLogs[1].Message != "done" {
		t.Errorf("log order = %q, %q", gotLogs[0].Message, gotLogs[1].Message)
	}
}

func TestSnapshotPrunesRemovedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []domain.Project{{ID: "p1"}, {ID: "p2"}}
	if err := repo.SaveSnapshot(ctx, first, nil, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	second := []domain.Project{{ID: "p2", Title: "Kept"}}
	if err := repo.SaveSnapshot(ctx, second, nil, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := repo.LoadProjects(ctx)
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("projects = %d, want 1", len(got))
	}
	if got[0].ID != "p2" || got[0].Title != "Kept" {
		t.Errorf("surviving project = %+v", got[0])
	}
}

func TestSnapshotEmptyCollectionsClearTables(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []domain.Project{{ID: "p1"}}
	if err := repo.SaveSnapshot(ctx, seed, nil, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := repo.SaveSnapshot(ctx, nil, nil, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := repo.LoadProjects(ctx)
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("projects = %d, want 0", len(got))
	}
}
