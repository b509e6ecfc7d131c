package store

import (
	"context"
	"sync"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
	"github.com/DiegoPama01/FrameForge-sub000/internal/logger"
)

// SessionConfig tunes the session's background flows.
type SessionConfig struct {
	// PollInterval enables a periodic full refresh when positive.
	PollInterval time.Duration
	// LogSeedLimit caps how many persisted worker logs warm the ring on
	// session start; zero uses the worker default.
	LogSeedLimit int
}

// Session owns exactly one push-channel subscription for its lifetime and
// the reconciliation task that drains it. There is no reconnect: if the
// channel errors, live updates stop until a new session is opened, and
// the error is retained for Err. Close tears everything down
// deterministically and is idempotent.
type Session struct {
	store  *Store
	stream gateway.EventStream
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// OpenSession performs the initial refresh, warms the log ring, opens the
// push channel, and starts the reconciler (plus an optional polling
// refresh).
// Parameters:
//   - ctx: context for the setup calls; the session itself lives until
//     Close.
//   - s: store to keep synchronized.
//   - gw: worker gateway; must be the same one backing the store.
//   - cfg: background flow tuning; nil uses defaults.
//
// Returns:
//   - *Session: live session.
//   - error: non-nil if the initial refresh or channel setup fails.
func OpenSession(ctx context.Context, s *Store, gw gateway.Gateway, cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		cfg = &SessionConfig{}
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	if err := s.SeedLogs(ctx, cfg.LogSeedLimit); err != nil {
		// Warm logs are a convenience; the live channel supplies the rest.
		logger.CtxWarn(ctx, "seeding worker logs failed: %v", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	stream, err := gw.OpenEvents(runCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	sess := &Session{
		store:  s,
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sess.reconcile(runCtx)
	if cfg.PollInterval > 0 {
		go sess.poll(runCtx, cfg.PollInterval)
	}
	return sess, nil
}

// reconcile is the single long-lived consumer of the push channel.
func (sess *Session) reconcile(ctx context.Context) {
	defer close(sess.done)

	for env := range sess.stream.C() {
		sess.store.ApplyEvent(ctx, env)
	}

	if err := sess.stream.Err(); err != nil {
		sess.mu.Lock()
		sess.err = err
		sess.mu.Unlock()
		logger.CtxWarn(ctx, "push channel ended, live updates stopped until session restart: %v", err)
	}
}

// poll runs the periodic background refresh.
func (sess *Session) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sess.store.Refresh(ctx); err != nil {
				logger.CtxWarn(ctx, "background refresh failed: %v", err)
			}
		}
	}
}

// Err reports the terminal push-channel error, if any. A nil result with
// a closed session means the channel ended cleanly.
func (sess *Session) Err() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.err
}

// Done is closed once the reconciler has drained the push channel.
func (sess *Session) Done() <-chan struct{} {
	return sess.done
}

// Close cancels the subscription, stops the reconciler and polling, and
// marks the store closed so late responses are dropped. Safe to call
// multiple times.
func (sess *Session) Close() {
	sess.closeOnce.Do(func() {
		sess.cancel()
		sess.stream.Close()
		sess.store.Close()
		<-sess.done
	})
}
