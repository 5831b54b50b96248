package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/studyfocus/internal/clock"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/ledger"
	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/alexanderramin/studyfocus/internal/timer"
)

// ErrClosed is returned when a timer is started on a closed workspace.
var ErrClosed = errors.New("workspace is closed")

// Workspace is the application context. It owns the ledger, the timer, the
// checkpoint writer and the browsing selection, and serializes every
// operation on them behind one mutation lock.
type Workspace struct {
	mu sync.Mutex

	ledger  *ledger.Ledger
	timer   *timer.Controller
	adapter *persistence.Adapter
	saver   *persistence.Saver

	clock        clock.Clock
	loc          *time.Location
	examDate     time.Time
	tickInterval time.Duration
	checkpoints  int
	newID        func() string
	observer     UseCaseObserver
	logger       *slog.Logger

	selection   Selection
	stopTicking context.CancelFunc
	closed      bool

	// loadErr is set while the stored snapshot could not be read. No
	// checkpoint is written then; held records that one was withheld.
	loadErr error
	held    bool
}

// Option configures a Workspace.
type Option func(*Workspace)

func WithClock(c clock.Clock) Option {
	return func(w *Workspace) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLocation sets the zone calendar statistics are computed in.
func WithLocation(loc *time.Location) Option {
	return func(w *Workspace) {
		if loc != nil {
			w.loc = loc
		}
	}
}

func WithExamDate(t time.Time) Option {
	return func(w *Workspace) {
		w.examDate = t
	}
}

// WithTickInterval sets the wall-clock length of one timer tick.
func WithTickInterval(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.tickInterval = d
		}
	}
}

// WithCheckpointEvery sets how many ticks pass between checkpoints.
func WithCheckpointEvery(n int) Option {
	return func(w *Workspace) {
		if n > 0 {
			w.checkpoints = n
		}
	}
}

// WithIDGenerator replaces the UUID generator for new nodes.
func WithIDGenerator(fn func() string) Option {
	return func(w *Workspace) {
		w.newID = fn
	}
}

func WithObserver(o UseCaseObserver) Option {
	return func(w *Workspace) {
		if o != nil {
			w.observer = o
		}
	}
}

// WithLogger sets the logger used for warnings and checkpoint failures.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorkspace builds an empty workspace storing its snapshot in kv under
// key. Call Load before use and Close when done.
func NewWorkspace(kv persistence.KV, key string, opts ...Option) *Workspace {
	w := &Workspace{
		clock:        clock.System{},
		loc:          time.Local,
		tickInterval: timer.DefaultInterval,
		checkpoints:  timer.DefaultCheckpointEvery,
		observer:     NoopUseCaseObserver{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.examDate.IsZero() {
		w.examDate = time.Date(2027, 1, 1, 0, 0, 0, 0, w.loc)
	}

	ledgerOpts := []ledger.Option{ledger.WithClock(w.clock)}
	if w.newID != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithIDGenerator(w.newID))
	}
	w.ledger = ledger.New(ledgerOpts...)
	w.adapter = persistence.NewAdapter(kv, key)
	w.saver = persistence.NewSaver(w.adapter, persistence.WithLogger(w.logger))
	w.timer = timer.New(w.ledger,
		timer.WithCheckpointEvery(w.checkpoints),
		timer.WithCheckpoint(w.checkpointLocked),
	)
	return w
}

// observe reports a finished use case. Call it deferred with a pointer to
// the named error result.
func (w *Workspace) observe(ctx context.Context, name string, startedAt time.Time, err *error, fields map[string]any) {
	var e error
	if err != nil {
		e = *err
	}
	w.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   e == nil,
		Err:       e,
		Fields:    fields,
	})
}

func (w *Workspace) snapshotLocked() persistence.Snapshot {
	snap := persistence.Snapshot{State: w.ledger.Snapshot()}
	if active, ok := w.timer.Active(); ok {
		snap.Active = &active
	}
	return snap
}

// checkpointLocked queues the current state for a background write.
func (w *Workspace) checkpointLocked() {
	if w.loadErr != nil {
		w.held = true
		return
	}
	w.saver.Request(w.snapshotLocked())
}

// heldErrLocked reports withheld checkpoints after a failed load.
func (w *Workspace) heldErrLocked() error {
	if !w.held {
		return nil
	}
	return fmt.Errorf("changes kept in memory only, stored data could not be loaded: %w", w.loadErr)
}

// Load replaces the in-memory state with the stored snapshot. It is the only
// awaited persistence call. On failure the workspace stays empty and idle,
// and nothing is written to the store until a later Load succeeds.
func (w *Workspace) Load(ctx context.Context) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"key": w.adapter.Key()}
	defer w.observe(ctx, "load", startedAt, &err, fields)

	snap, err := w.adapter.Load(ctx)
	if err != nil {
		w.mu.Lock()
		w.loadErr = err
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loadErr, w.held = nil, false
	w.stopTickingLocked()
	w.timer.Reset()
	w.selection = Selection{}

	violations := w.ledger.Hydrate(snap.State)
	for _, v := range violations {
		w.logger.WarnContext(ctx, "stored ledger is inconsistent", "path", v.Path, "problem", v.Message)
	}
	fields["subjects"] = w.ledger.Len()
	fields["violations"] = len(violations)

	if snap.Active != nil {
		t := snap.Active.Target
		if _, terr := w.ledger.Topic(t.SubjectID, t.ChapterID, t.TopicID); terr != nil {
			w.logger.WarnContext(ctx, "dropping stored timer", "target", t.String(), "error", terr)
		} else if rerr := w.timer.Restore(*snap.Active); rerr != nil {
			w.logger.WarnContext(ctx, "dropping stored timer", "target", t.String(), "error", rerr)
		} else {
			fields["restored_timer"] = t.String()
			fields["restored_seconds"] = snap.Active.ElapsedSeconds
		}
	}
	return nil
}

// Flush writes any pending checkpoint synchronously. After a failed Load it
// writes nothing and reports whether changes were withheld.
func (w *Workspace) Flush(ctx context.Context) (err error) {
	startedAt := time.Now()
	defer w.observe(ctx, "flush", startedAt, &err, nil)

	w.mu.Lock()
	err = w.heldErrLocked()
	w.mu.Unlock()
	if err != nil {
		return err
	}
	return w.saver.Flush(ctx)
}

// Close stops ticking, checkpoints the final state and shuts down the
// checkpoint writer. A running timer is persisted as running, not stopped.
// After a failed Load the store is left untouched.
func (w *Workspace) Close(ctx context.Context) (err error) {
	startedAt := time.Now()
	defer w.observe(ctx, "close", startedAt, &err, nil)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.stopTickingLocked()
	w.checkpointLocked()
	heldErr := w.heldErrLocked()
	w.mu.Unlock()

	if err = w.saver.Close(ctx); err != nil {
		return fmt.Errorf("closing workspace: %w", err)
	}
	return heldErr
}

// startTickingLocked runs the tick loop for the current timer until
// stopTickingLocked is called.
func (w *Workspace) startTickingLocked() {
	w.stopTickingLocked()
	ctx, cancel := context.WithCancel(context.Background())
	w.stopTicking = cancel
	go timer.Run(ctx, w.tickInterval, func() { w.tick(ctx) })
}

func (w *Workspace) stopTickingLocked() {
	if w.stopTicking != nil {
		w.stopTicking()
		w.stopTicking = nil
	}
}

func (w *Workspace) tick(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// The loop may have been cancelled while this tick waited for the lock.
	if ctx.Err() != nil {
		return
	}
	w.timer.Tick()
}

// Ticking reports whether the tick loop is running.
func (w *Workspace) Ticking() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopTicking != nil
}

// isNotFound reports a reference to a deleted or unknown node.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
