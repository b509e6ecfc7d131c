package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/logger"
)

// maxEventSize bounds a single SSE line; log payloads are small but
// status payloads may carry full project records.
const maxEventSize = 1 << 20

// OpenEvents opens the worker's push channel as a server-sent-event
// stream. The returned stream ends, without reconnecting, when the
// connection drops or ctx is cancelled.
// Parameters:
//   - ctx: context governing the lifetime of the stream.
//
// Returns:
//   - EventStream: live stream of envelopes.
//   - error: non-nil if the channel cannot be established, wrapping
//     domain.ErrRemoteCall.
func (c *Client) OpenEvents(ctx context.Context) (EventStream, error) {
	req := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream")
	if c.token != "" {
		// The event endpoint authenticates via query parameter; EventSource
		// style clients cannot set headers, and the worker mirrors that.
		req.SetQueryParam("token", c.token)
	}

	resp, err := req.Get("/events")
	if err != nil {
		return nil, fmt.Errorf("%w: open events: %v", domain.ErrRemoteCall, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		resp.RawBody().Close()
		return nil, fmt.Errorf("%w: open events: HTTP %d", domain.ErrRemoteCall, resp.StatusCode())
	}

	s := &sseStream{
		ch:   make(chan Envelope, 16),
		body: resp.RawBody(),
	}
	go s.run(ctx)
	return s, nil
}

// sseStream reads "data: {...}" frames off a raw HTTP body and decodes
// them into envelopes.
type sseStream struct {
	ch   chan Envelope
	body io.ReadCloser

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// C returns the envelope channel. It is closed when the stream ends.
func (s *sseStream) C() <-chan Envelope {
	return s.ch
}

// Err reports the terminal stream error after C is closed, nil on a clean
// shutdown.
func (s *sseStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the stream down. Safe to call multiple times.
func (s *sseStream) Close() {
	s.closeOnce.Do(func() {
		s.body.Close()
	})
}

func (s *sseStream) run(ctx context.Context) {
	defer close(s.ch)
	defer s.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Frame boundary: dispatch the accumulated payload.
			if data.Len() > 0 {
				s.dispatch(ctx, data.String())
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comments (": ...") and fields we do not use (event:, id:,
			// retry:) are skipped.
		}
	}
	if data.Len() > 0 {
		s.dispatch(ctx, data.String())
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.mu.Lock()
		s.err = fmt.Errorf("%w: event stream: %v", domain.ErrRemoteCall, err)
		s.mu.Unlock()
	}
}

// dispatch decodes one frame and forwards it. Malformed frames are a
// best-effort channel condition: logged and dropped, never fatal.
func (s *sseStream) dispatch(ctx context.Context, payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logger.CtxWarn(ctx, "dropping malformed push event: %v: %v", domain.ErrChannelParse, err)
		return
	}
	select {
	case s.ch <- env:
	case <-ctx.Done():
	}
}
