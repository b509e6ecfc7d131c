package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
)

const workerTokenHeader = "x-worker-token"

// Client is the resty-backed Gateway implementation talking to the worker
// REST API. The base URL and credential are fixed for the session.
type Client struct {
	http    *resty.Client
	stream  *resty.Client
	baseURL string
	token   string
}

// ClientConfig holds configuration for the worker API client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewClient creates a new worker API client.
// Parameters:
//   - cfg: client configuration including base URL and worker token.
//
// Returns:
//   - *Client: initialized client bound to the worker endpoint.
func NewClient(cfg *ClientConfig) *Client {
	http := resty.New()
	http.SetBaseURL(cfg.BaseURL)
	http.SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		http.SetHeader(workerTokenHeader, cfg.Token)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	http.SetTimeout(timeout)

	// The event stream stays open indefinitely; a client-level timeout
	// would sever it mid-session.
	stream := resty.New()
	stream.SetBaseURL(cfg.BaseURL)

	return &Client{
		http:    http,
		stream:  stream,
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
	}
}

// projectRecord is the wire shape of a project. Stage and status arrive as
// raw labels and are normalized at this boundary only.
type projectRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	CurrentStage string `json:"currentStage"`
	Duration     string `json:"duration"`
	Thumbnail    string `json:"thumbnail"`
	Category     string `json:"category"`
	UpdatedAt    string `json:"updatedAt"`
}

func (r projectRecord) toDomain() domain.Project {
	return domain.Project{
		ID:        r.ID,
		Title:     r.Title,
		Status:    domain.NormalizeStatus(r.Status),
		Stage:     domain.NormalizeStage(r.CurrentStage),
		Duration:  r.Duration,
		Thumbnail: r.Thumbnail,
		Category:  r.Category,
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// jobRecord is the wire shape of a job.
type jobRecord struct {
	ID               string         `json:"id"`
	WorkflowID       string         `json:"workflowId"`
	Status           string         `json:"status"`
	Progress         int            `json:"progress"`
	Parameters       map[string]any `json:"parameters"`
	ScheduleInterval string         `json:"schedule_interval"`
	ScheduleTime     string         `json:"schedule_time"`
	LastRun          string         `json:"last_run"`
	Error            string         `json:"error"`
	CreatedAt        string         `json:"createdAt"`
}

func (r jobRecord) toDomain() domain.Job {
	return domain.Job{
		ID:         r.ID,
		WorkflowID: r.WorkflowID,
		Status:     domain.NormalizeJobStatus(r.Status),
		Progress:   r.Progress,
		Parameters: r.Parameters,
		Schedule: domain.Schedule{
			Interval: domain.NormalizeInterval(r.ScheduleInterval),
			Time:     r.ScheduleTime,
		},
		LastRun:   r.LastRun,
		Error:     r.Error,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}

// logRecord is the wire shape of a persisted worker log line.
type logRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
}

func (r logRecord) toDomain() domain.LogEntry {
	return domain.LogEntry{
		Timestamp: r.Timestamp,
		Level:     domain.NormalizeLogLevel(r.Level),
		Message:   r.Message,
		ProjectID: r.ProjectID,
	}
}

// ListProjects fetches all projects.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//
// Returns:
//   - []domain.Project: projects with normalized stage and status.
//   - error: non-nil if the request fails, wrapping domain.ErrRemoteCall.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var records []projectRecord
	resp, err := c.http.R().SetContext(ctx).SetResult(&records).Get("/projects")
	if err := c.checkResponse(resp, err, "list projects"); err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(records))
	for _, r := range records {
		projects = append(projects, r.toDomain())
	}
	return projects, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var record projectRecord
	resp, err := c.http.R().SetContext(ctx).SetResult(&record).
		Get("/projects/" + url.PathEscape(id))
	if err := c.checkResponse(resp, err, "get project"); err != nil {
		return domain.Project{}, err
	}
	return record.toDomain(), nil
}

// PatchProjectMeta updates the mutable descriptive fields of a project.
func (c *Client) PatchProjectMeta(ctx context.Context, id string, meta ProjectMeta) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(meta).
		Patch("/projects/" + url.PathEscape(id))
	return c.checkResponse(resp, err, "patch project")
}

// RunNextStage asks the worker to execute the project's next pipeline
// stage.
func (c *Client) RunNextStage(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Post("/projects/" + url.PathEscape(id) + "/run-next-stage")
	return c.checkResponse(resp, err, "run next stage")
}

// RetryStage re-runs the project's current stage after a failure.
func (c *Client) RetryStage(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Post("/projects/" + url.PathEscape(id) + "/retry-stage")
	return c.checkResponse(resp, err, "retry stage")
}

// RunAutomatically asks the worker to run all remaining stages without
// further prompting.
func (c *Client) RunAutomatically(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Post("/projects/" + url.PathEscape(id) + "/run-automatically")
	return c.checkResponse(resp, err, "run automatically")
}

// Cleanup removes the project's intermediate artifacts server-side.
func (c *Client) Cleanup(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Post("/projects/" + url.PathEscape(id) + "/cleanup")
	return c.checkResponse(resp, err, "cleanup project")
}

// DeleteProject deletes a project. A hard delete removes it completely; a
// soft delete cancels it, leaving a Cancelled record behind.
func (c *Client) DeleteProject(ctx context.Context, id string, hard bool) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("complete", strconv.FormatBool(hard)).
		Delete("/projects/" + url.PathEscape(id))
	return c.checkResponse(resp, err, "delete project")
}

// HarvestProjects asks the worker to discover new source content.
func (c *Client) HarvestProjects(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/projects/harvest")
	return c.checkResponse(resp, err, "harvest projects")
}

// ListWorkflows fetches all workflow templates.
func (c *Client) ListWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	resp, err := c.http.R().SetContext(ctx).SetResult(&workflows).Get("/workflows")
	if err := c.checkResponse(resp, err, "list workflows"); err != nil {
		return nil, err
	}
	return workflows, nil
}

// CreateWorkflow registers a new workflow template.
func (c *Client) CreateWorkflow(ctx context.Context, w domain.Workflow) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(w).Post("/workflows")
	return c.checkResponse(resp, err, "create workflow")
}

// DeleteWorkflow removes a workflow template.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete("/workflows/" + url.PathEscape(id))
	return c.checkResponse(resp, err, "delete workflow")
}

// ListJobs fetches all jobs.
func (c *Client) ListJobs(ctx context.Context) ([]domain.Job, error) {
	var records []jobRecord
	resp, err := c.http.R().SetContext(ctx).SetResult(&records).Get("/jobs")
	if err := c.checkResponse(resp, err, "list jobs"); err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(records))
	for _, r := range records {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

type jobRequest struct {
	WorkflowID       string         `json:"workflowId,omitempty"`
	Parameters       map[string]any `json:"parameters"`
	ScheduleInterval string         `json:"schedule_interval,omitempty"`
	ScheduleTime     string         `json:"schedule_time,omitempty"`
}

func newJobRequest(workflowID string, params map[string]any, schedule *domain.Schedule) jobRequest {
	req := jobRequest{WorkflowID: workflowID, Parameters: params}
	if schedule != nil {
		req.ScheduleInterval = string(schedule.Interval)
		req.ScheduleTime = schedule.Time
	}
	return req
}

// CreateJob launches a new job for a workflow and returns the server id.
func (c *Client) CreateJob(ctx context.Context, workflowID string, params map[string]any, schedule *domain.Schedule) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(newJobRequest(workflowID, params, schedule)).
		SetResult(&result).
		Post("/jobs")
	if err := c.checkResponse(resp, err, "create job"); err != nil {
		return "", err
	}
	return result.ID, nil
}

// UpdateJob patches an existing job's parameters and schedule.
func (c *Client) UpdateJob(ctx context.Context, id string, params map[string]any, schedule *domain.Schedule) error {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(newJobRequest("", params, schedule)).
		Patch("/jobs/" + url.PathEscape(id))
	return c.checkResponse(resp, err, "update job")
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete("/jobs/" + url.PathEscape(id))
	return c.checkResponse(resp, err, "delete job")
}

// RunJob triggers an immediate execution of a job.
func (c *Client) RunJob(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Post("/jobs/" + url.PathEscape(id) + "/run")
	return c.checkResponse(resp, err, "run job")
}

// ListAssets fetches the descriptive asset records.
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	resp, err := c.http.R().SetContext(ctx).SetResult(&assets).Get("/assets")
	if err := c.checkResponse(resp, err, "list assets"); err != nil {
		return nil, err
	}
	return assets, nil
}

// ListLogs fetches the worker's most recent persisted log entries, used to
// warm the local ring buffer on session start.
func (c *Client) ListLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	req := c.http.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	var records []logRecord
	resp, err := req.SetResult(&records).Get("/logs")
	if err := c.checkResponse(resp, err, "list logs"); err != nil {
		return nil, err
	}
	entries := make([]domain.LogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.toDomain())
	}
	return entries, nil
}

// checkResponse folds transport errors and non-2xx responses into the
// ErrRemoteCall taxonomy.
func (c *Client) checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrRemoteCall, op, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: %s: HTTP %d: %s", domain.ErrRemoteCall, op, resp.StatusCode(), resp.Status())
	}
	return nil
}

// parseTimestamp decodes the worker's timestamp formats. The worker emits
// naive UTC isoformat strings; RFC3339 is accepted for forward
// compatibility. Unparseable input yields the zero time.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
