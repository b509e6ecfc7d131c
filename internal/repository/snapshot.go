package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectRow is the persisted form of a project.
type projectRow struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	Status    string
	Stage     string
	Duration  string
	Thumbnail string
	Category  string
	UpdatedAt time.Time
}

// jobRow is the persisted form of a job. Parameters are stored as a JSON
// blob since their shape is workflow-defined.
type jobRow struct {
	ID               string `gorm:"primaryKey"`
	WorkflowID       string
	Parameters       string
	Status           string
	Progress         int
	ScheduleInterval string
	ScheduleTime     string
	LastRun          string
	Error            string
	CreatedAt        time.Time
}

// workflowRow persists a workflow template with its node graph as JSON.
type workflowRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	Tags        string
	Nodes       string
}

// logRow persists one console log line.
type logRow struct {
	Seq       uint `gorm:"primaryKey;autoIncrement"`
	Timestamp string
	Level     string
	Message   string
	ProjectID string `gorm:"index"`
}

// SnapshotRepository stores the synchronized state locally so a restarted
// console has warm data before its first successful refresh.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a snapshot repository backed by db.
// Parameters:
//   - db: migrated database handle from InitDB.
// Returns:
//   - *SnapshotRepository: ready repository.
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshot replaces the persisted state with the given collections in
// one transaction.
// Parameters:
//   - ctx: request context.
//   - projects: current project list.
//   - jobs: current job list.
//   - workflows: current workflow templates.
//   - logs: current log ring contents, oldest first.
// Returns:
//   - error: non-nil if the transaction fails.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, projects []domain.Project, jobs []domain.Job, workflows []domain.Workflow, logs []domain.LogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&logRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear logs: %w", err)
		}

		if err := replaceProjects(tx, projects); err != nil {
			return err
		}
		if err := replaceJobs(tx, jobs); err != nil {
			return err
		}
		if err := replaceWorkflows(tx, workflows); err != nil {
			return err
		}

		for _, entry := range logs {
			row := logRow{
				Timestamp: entry.Timestamp,
				Level:     string(entry.Level),
				Message:   entry.Message,
				ProjectID: entry.ProjectID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save log entry: %w", err)
			}
		}
		return nil
	})
}

func replaceProjects(tx *gorm.DB, projects []domain.Project) error {
	keep := make([]string, 0, len(projects))
	for _, p := range projects {
		keep = append(keep, p.ID)
		row := projectRow{
			ID:        p.ID,
			Title:     p.Title,
			Status:    string(p.Status),
			Stage:     string(p.Stage),
			Duration:  p.Duration,
			Thumbnail: p.Thumbnail,
			Category:  p.Category,
			UpdatedAt: p.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save project %s: %w", p.ID, err)
		}
	}
	return deleteMissing(tx, &projectRow{}, keep)
}

func replaceJobs(tx *gorm.DB, jobs []domain.Job) error {
	keep := make([]string, 0, len(jobs))
	for _, j := range jobs {
		params, err := json.Marshal(j.Parameters)
		if err != nil {
			return fmt.Errorf("failed to encode parameters for job %s: %w", j.ID, err)
		}
		keep = append(keep, j.ID)
		row := jobRow{
			ID:               j.ID,
			WorkflowID:       j.WorkflowID,
			Parameters:       string(params),
			Status:           string(j.Status),
			Progress:         j.Progress,
			ScheduleInterval: string(j.Schedule.Interval),
			ScheduleTime:     j.Schedule.Time,
			LastRun:          j.LastRun,
			Error:            j.Error,
			CreatedAt:        j.CreatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save job %s: %w", j.ID, err)
		}
	}
	return deleteMissing(tx, &jobRow{}, keep)
}

func replaceWorkflows(tx *gorm.DB, workflows []domain.Workflow) error {
	keep := make([]string, 0, len(workflows))
	for _, w := range workflows {
		tags, err := json.Marshal(w.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for workflow %s: %w", w.ID, err)
		}
		nodes, err := json.Marshal(w.Nodes)
		if err != nil {
			return fmt.Errorf("failed to encode nodes for workflow %s: %w", w.ID, err)
		}
		keep = append(keep, w.ID)
		row := workflowRow{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Description,
			Tags:        string(tags),
			Nodes:       string(nodes),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save workflow %s: %w", w.ID, err)
		}
	}
	return deleteMissing(tx, &workflowRow{}, keep)
}

// deleteMissing removes rows whose id is no longer present upstream.
func deleteMissing(tx *gorm.DB, model any, keep []string) error {
	q := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if len(keep) > 0 {
		q = tx.Where("id NOT IN ?", keep)
	}
	if err := q.Delete(model).Error; err != nil {
		return fmt.Errorf("failed to prune stale rows: %w", err)
	}
	return nil
}

// LoadProjects returns the persisted project list.
func (r *SnapshotRepository) LoadProjects(ctx context.Context) ([]domain.Project, error) {
	var rows []projectRow
	if err := r.db.WithContext(ctx).Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Project{
			ID:        row.ID,
			Title:     row.Title,
			Status:    domain.NormalizeStatus(row.Status),
			Stage:     domain.NormalizeStage(row.Stage),
			Duration:  row.Duration,
			Thumbnail: row.Thumbnail,
			Category:  row.Category,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

// LoadJobs returns the persisted job list.
func (r *SnapshotRepository) LoadJobs(ctx context.Context) ([]domain.Job, error) {
	var rows []jobRow
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	out := make([]domain.Job, 0, len(rows))
	for _, row := range rows {
		var params map[string]any
		if row.Parameters != "" {
			if err := json.Unmarshal([]byte(row.Parameters), &params); err != nil {
				return nil, fmt.Errorf("failed to decode parameters for job %s: %w", row.ID, err)
			}
		}
		out = append(out, domain.Job{
			ID:         row.ID,
			WorkflowID: row.WorkflowID,
			Parameters: params,
			Status:     domain.NormalizeJobStatus(row.Status),
			Progress:   row.Progress,
			Schedule: domain.Schedule{
				Interval: domain.NormalizeInterval(row.ScheduleInterval),
				Time:     row.ScheduleTime,
			},
			LastRun:   row.LastRun,
			Error:     row.Error,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// LoadWorkflows returns the persisted workflow templates.
func (r *SnapshotRepository) LoadWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	var rows []workflowRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load workflows: %w", err)
	}
	out := make([]domain.Workflow, 0, len(rows))
	for _, row := range rows {
		w := domain.Workflow{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
		}
		if row.Tags != "" {
			if err := json.Unmarshal([]byte(row.Tags), &w.Tags); err != nil {
				return nil, fmt.Errorf("failed to decode tags for workflow %s: %w", row.ID, err)
			}
		}
		if row.Nodes != "" {
			if err := json.Unmarshal([]byte(row.Nodes), &w.Nodes); err != nil {
				return nil, fmt.Errorf("failed to decode nodes for workflow %s: %w", row.ID, err)
			}
		}
		out = append(out, w)
	}
	return out, nil
}

// LoadLogs returns the persisted log lines, oldest first.
func (r *SnapshotRepository) LoadLogs(ctx context.Context) ([]domain.LogEntry, error) {
	var rows []logRow
	if err := r.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}
	out := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LogEntry{
			Timestamp: row.Timestamp,
			Level:     domain.NormalizeLogLevel(row.Level),
			Message:   row.Message,
			ProjectID: row.ProjectID,
		})
	}
	return out, nil
}
