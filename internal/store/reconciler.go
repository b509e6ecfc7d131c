package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
	"github.com/DiegoPama01/FrameForge-sub000/internal/logger"
)

// Push event types understood by the reconciler. Anything else is
// dropped: the channel is best-effort and versionless, so an event always
// applies on top of whatever the store currently holds.
const (
	eventTypeLog    = "log"
	eventTypeStatus = "status_update"
)

// logEvent is the payload of a "log" envelope. Missing fields take
// defaults rather than failing the entry.
type logEvent struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
}

// statusEvent is the payload of a "status_update" envelope. A job delta
// is tagged with type "job"; everything else is a project delta keyed by
// id. Pointer fields distinguish absent from empty: absent fields stay
// untouched (partial patch, not replacement).
type statusEvent struct {
	Type         string  `json:"type"`
	ID           string  `json:"id"`
	Status       *string `json:"status"`
	CurrentStage *string `json:"currentStage"`
	Duration     *string `json:"duration"`
	Progress     *int    `json:"progress"`
}

// ApplyEvent merges one push-channel envelope into the store. Parse
// failures and unknown types are logged and dropped, never surfaced: a
// lossy channel must not take the console down.
func (s *Store) ApplyEvent(ctx context.Context, env gateway.Envelope) {
	switch env.Type {
	case eventTypeLog:
		s.applyLog(ctx, env)
	case eventTypeStatus:
		s.applyStatus(ctx, env)
	default:
		logger.CtxDebug(ctx, "ignoring push event of unknown type %q", env.Type)
	}
}

func (s *Store) applyLog(ctx context.Context, env gateway.Envelope) {
	var ev logEvent
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			logger.CtxWarn(ctx, "dropping log event: %v: %v", domain.ErrChannelParse, err)
			return
		}
	}
	if ev.Timestamp == "" {
		ev.Timestamp = env.Timestamp
	}
	entry := domain.LogEntry{
		Timestamp: ev.Timestamp,
		Level:     domain.NormalizeLogLevel(ev.Level),
		Message:   ev.Message,
		ProjectID: ev.ProjectID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logs.Append(entry)
}

func (s *Store) applyStatus(ctx context.Context, env gateway.Envelope) {
	var ev statusEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		logger.CtxWarn(ctx, "dropping status event: %v: %v", domain.ErrChannelParse, err)
		return
	}
	if ev.ID == "" {
		logger.CtxWarn(ctx, "dropping status event without id: %v", domain.ErrChannelParse)
		return
	}

	if ev.Type == "job" {
		s.patchJobFromEvent(ctx, ev)
		return
	}
	s.patchProjectFromEvent(ctx, ev)
}

func (s *Store) patchJobFromEvent(ctx context.Context, ev statusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.jobs {
		if s.jobs[i].ID != ev.ID {
			continue
		}
		if ev.Status != nil {
			s.jobs[i].Status = domain.NormalizeJobStatus(*ev.Status)
		}
		if ev.Progress != nil {
			s.jobs[i].Progress = *ev.Progress
		}
		return
	}
	logger.CtxDebug(ctx, "status event for unknown job %s ignored", ev.ID)
}

func (s *Store) patchProjectFromEvent(ctx context.Context, ev statusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	i, err := s.projectLocked(ev.ID)
	if err != nil {
		logger.CtxDebug(ctx, "status event for unknown project %s ignored", ev.ID)
		return
	}
	s.patchProjectLocked(i, func(p *domain.Project) {
		if ev.Status != nil {
			p.Status = domain.NormalizeStatus(*ev.Status)
		}
		if ev.CurrentStage != nil {
			p.Stage = domain.NormalizeStage(*ev.CurrentStage)
		}
		if ev.Duration != nil {
			p.Duration = *ev.Duration
		}
		p.UpdatedAt = time.Now().UTC()
	})
}
