package domain

import "errors"

// Error taxonomy for the sync core. Callers test with errors.Is; wrapping
// adds call-site context.
var (
	// ErrRemoteCall marks a network failure or non-2xx response from any
	// worker call. Mutations failing with it have already triggered a
	// silent full refresh before the error reaches the caller.
	ErrRemoteCall = errors.New("remote call failed")

	// ErrChannelParse marks a malformed push-channel message. Recovered
	// locally: logged, dropped, never surfaced to callers.
	ErrChannelParse = errors.New("event channel parse error")

	// ErrInvalidSchedule marks a recurring schedule missing a well-formed
	// time. Raised before any worker call is made.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrNotFound marks a referenced project, job, or workflow absent from
	// the local cache.
	ErrNotFound = errors.New("not found")

	// ErrSessionClosed marks an operation attempted after the owning
	// session was torn down.
	ErrSessionClosed = errors.New("session closed")
)
