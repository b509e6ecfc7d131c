package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
)

func envelope(t *testing.T, typ string, payload any) gateway.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return gateway.Envelope{Type: typ, Timestamp: "2026-03-01T12:00:00Z", Data: data}
}

func TestApplyStatusEventPartialPatch(t *testing.T) {
	s, _ := newTestStore(t)
	before, _ := s.Project("p1")

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"id":           "p1",
		"status":       "Processing",
		"currentStage": "Vocal Synthesis",
	}))

	p, ok := s.Project("p1")
	if !ok {
		t.Fatal("p1 missing")
	}
	if p.Status != domain.StatusProcessing {
		t.Errorf("status = %q, want Processing", p.Status)
	}
	if p.Stage != domain.StageVocalSynthesis {
		t.Errorf("stage = %q, want Vocal Synthesis", p.Stage)
	}
	// Absent fields stay untouched.
	if p.Title != before.Title {
		t.Errorf("title changed by partial patch: %q", p.Title)
	}
	if p.Duration != before.Duration {
		t.Errorf("duration changed by partial patch: %q", p.Duration)
	}
}

func TestApplyStatusEventStatusOnlyLeavesStage(t *testing.T) {
	s, _ := newTestStore(t)
	before, _ := s.Project("p2")

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"id":     "p2",
		"status": "Success",
	}))

	p, _ := s.Project("p2")
	if p.Status != domain.StatusSuccess {
		t.Errorf("status = %q, want Success", p.Status)
	}
	if p.Stage != before.Stage {
		t.Errorf("stage = %q, must stay %q", p.Stage, before.Stage)
	}
}

func TestApplyStatusEventLegacyStageLabel(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"id":           "p1",
		"currentStage": "Speech Generated",
	}))

	p, _ := s.Project("p1")
	if p.Stage != domain.StageVocalSynthesis {
		t.Errorf("stage = %q, want normalized Vocal Synthesis", p.Stage)
	}
}

func TestApplyStatusEventPatchesSelection(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Select("p1"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"id":     "p1",
		"status": "Error",
	}))

	sel, ok := s.Selected()
	if !ok {
		t.Fatal("selection lost")
	}
	if sel.Status != domain.StatusError {
		t.Errorf("selection status = %q, want Error", sel.Status)
	}
}

func TestApplyStatusEventJobDelta(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"type":     "job",
		"id":       "j1",
		"status":   "running",
		"progress": 42,
	}))

	j, ok := s.Job("j1")
	if !ok {
		t.Fatal("j1 missing")
	}
	if j.Status != domain.JobStatusRunning {
		t.Errorf("job status = %q, want Running", j.Status)
	}
	if j.Progress != 42 {
		t.Errorf("job progress = %d, want 42", j.Progress)
	}
}

func TestApplyStatusEventUnknownIDIgnored(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"id":     "ghost",
		"status": "Processing",
	}))

	if got := len(s.Projects()); got != 2 {
		t.Errorf("projects = %d after unknown-id event, want 2", got)
	}
}

func TestApplyLogEventDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), envelope(t, "log", map[string]any{
		"message":    "render queued",
		"project_id": "p1",
	}))

	logs := s.Logs()
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	entry := logs[0]
	if entry.Level != domain.LogLevelInfo {
		t.Errorf("missing level should default to info, got %q", entry.Level)
	}
	if entry.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("missing timestamp should fall back to envelope, got %q", entry.Timestamp)
	}
	if entry.ProjectID != "p1" {
		t.Errorf("project id = %q, want p1", entry.ProjectID)
	}
}

func TestApplyEventMalformedPayloadDropped(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), gateway.Envelope{
		Type: "status_update",
		Data: json.RawMessage(`{"id": `),
	})
	s.ApplyEvent(context.Background(), gateway.Envelope{
		Type: "log",
		Data: json.RawMessage(`not json`),
	})

	// State stays usable afterwards.
	if got := len(s.Projects()); got != 2 {
		t.Errorf("projects = %d after malformed events, want 2", got)
	}
	if got := len(s.Logs()); got != 0 {
		t.Errorf("logs = %d after malformed events, want 0", got)
	}
}

func TestApplyEventMissingIDDropped(t *testing.T) {
	s, _ := newTestStore(t)
	before, _ := s.Project("p1")

	s.ApplyEvent(context.Background(), envelope(t, "status_update", map[string]any{
		"status": "Processing",
	}))

	p, _ := s.Project("p1")
	if p.Status != before.Status {
		t.Errorf("status changed by id-less event: %q", p.Status)
	}
}

func TestApplyEventUnknownTypeIgnored(t *testing.T) {
	s, _ := newTestStore(t)

	s.ApplyEvent(context.Background(), envelope(t, "heartbeat", map[string]any{"ok": true}))

	if got := len(s.Logs()); got != 0 {
		t.Errorf("logs = %d after unknown event type, want 0", got)
	}
}

func TestApplyEventAfterCloseIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	s.Close()

	s.ApplyEvent(context.Background(), envelope(t, "log", map[string]any{"message": "late"}))

	if got := len(s.Logs()); got != 0 {
		t.Errorf("logs = %d after close, want 0", got)
	}
}
