// Package sync drains the local change queue against the server and
// reconciles server state back into the local store.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/iudanet/tracker/internal/client/api"
	"github.com/iudanet/tracker/internal/client/connectivity"
	"github.com/iudanet/tracker/internal/client/storage"
)

//go:generate moq -out remote_mock.go -pkg sync ../api Remote

// DefaultMaxRetries is the number of transient failures after which a queue item is dropped
const DefaultMaxRetries = 5

// Option configures an Engine
type Option func(*Engine)

// WithMaxRetries overrides the retry ceiling
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithMetrics enables prometheus metrics
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLossReporter sets the receiver of data-loss events
func WithLossReporter(r LossReporter) Option {
	return func(e *Engine) {
		e.loss = r
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine owns the sync status and runs push-then-pull passes.
// At most one pass runs at a time; triggers arriving meanwhile are dropped.
type Engine struct {
	store   storage.Store
	remote  api.Remote
	conn    connectivity.Source
	logger  *slog.Logger
	metrics *Metrics
	loss    LossReporter
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	subs       map[int]*subscriber
	flight     *stdsync.Cond
	drained    *stdsync.Cond
	outbox     []delivery
	state      State
	version    uint64
	nextSub    int
	delivering bool

	maxRetries int

	wg      stdsync.WaitGroup
	mu      stdsync.Mutex // state, subs, outbox, running
	running bool
}

// NewEngine creates a sync engine. The initial status follows conn.
func NewEngine(store storage.Store, remote api.Remote, conn connectivity.Source, logger *slog.Logger, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:      store,
		remote:     remote,
		conn:       conn,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		subs:       make(map[int]*subscriber),
		maxRetries: DefaultMaxRetries,
	}
	e.flight = stdsync.NewCond(&e.mu)
	e.drained = stdsync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}

	e.state = State{Status: e.restingStatus(), Pending: e.pendingCount(ctx)}
	return e
}

// State returns the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Trigger asks for a background pass after a local mutation.
// Offline it only refreshes the pending count; during a pass it is a no-op.
func (e *Engine) Trigger() {
	if !e.conn.Online() {
		if e.isRunning() {
			return
		}
		e.publish(StatusOffline, e.pendingCount(e.ctx))
		return
	}
	e.startAsync()
}

// SyncNow runs a pass synchronously and returns its outcome.
func (e *Engine) SyncNow(ctx context.Context) (*Result, error) {
	if !e.conn.Online() {
		return nil, ErrOffline
	}
	if !e.tryAcquire() {
		return nil, ErrSyncInProgress
	}
	defer e.release()

	return e.pass(ctx)
}

// Start subscribes to connectivity and, if online, starts a pass.
// stop detaches from connectivity; it does not wait for a running pass.
func (e *Engine) Start() (stop func()) {
	unsubscribe := e.conn.Subscribe(e.onConnectivity)
	if e.conn.Online() {
		e.startAsync()
	}
	return unsubscribe
}

// Run reacts to connectivity until ctx is done, then waits for the running pass.
func (e *Engine) Run(ctx context.Context) error {
	stop := e.Start()
	defer stop()

	<-ctx.Done()
	e.Close()
	return nil
}

// Wait blocks until background passes started so far have finished and
// their state transitions have reached the subscribers.
// It must not be called from a subscriber.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.waitDelivered()
}

// Close cancels background passes and waits for them
func (e *Engine) Close() {
	e.cancel()
	e.Wait()
}

// WipeLocalState waits for a running pass, then clears the whole local store.
// Call it once per sign-out.
func (e *Engine) WipeLocalState(ctx context.Context) error {
	e.mu.Lock()
	for e.running {
		e.flight.Wait()
	}
	e.running = true
	e.mu.Unlock()
	defer e.release()

	if err := e.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe local state: %w", err)
	}

	e.logger.Info("Local state wiped")
	e.publish(e.restingStatus(), 0)
	return nil
}

func (e *Engine) onConnectivity(online bool) {
	if online {
		e.logger.Info("Connectivity restored")
		e.startAsync()
		return
	}

	e.logger.Info("Connectivity lost")
	// Идущий проход сам завершится в состоянии offline
	if e.isRunning() {
		return
	}
	e.publish(StatusOffline, e.pendingCount(e.ctx))
}

// startAsync starts a background pass unless one is already running
func (e *Engine) startAsync() bool {
	if !e.tryAcquire() {
		return false
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release()

		if _, err := e.pass(e.ctx); err != nil {
			e.logger.Warn("Background sync failed", "error", err)
		}
	}()
	return true
}

func (e *Engine) tryAcquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	return true
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.flight.Broadcast()
	e.mu.Unlock()
}

func (e *Engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// restingStatus is the status outside a pass when nothing failed
func (e *Engine) restingStatus() Status {
	if e.conn.Online() {
		return StatusIdle
	}
	return StatusOffline
}

// pendingCount returns the queue length, or the last known value if the store fails
func (e *Engine) pendingCount(ctx context.Context) int {
	var n int
	err := e.store.View(ctx, func(tx storage.Tx) error {
		var err error
		n, err = tx.QueueLen()
		return err
	})
	if err != nil {
		e.logger.Warn("Failed to read queue length", "error", err)
		e.mu.Lock()
		n = e.state.Pending
		e.mu.Unlock()
	}
	return n
}
