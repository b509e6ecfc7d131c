package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldProjectID is the production project ID
	FieldProjectID = "project_id"

	// FieldJobID is the automation job ID
	FieldJobID = "job_id"

	// FieldStage is the pipeline stage name
	FieldStage = "stage"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldEventType is the push-channel event type
	FieldEventType = "event_type"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
