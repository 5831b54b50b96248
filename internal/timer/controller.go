// Package timer implements the single study timer: an Idle/Running state
// machine that turns elapsed ticks into finished sessions on the ledger.
package timer

import (
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// DefaultCheckpointEvery is the number of ticks between checkpoints of a
// running timer.
const DefaultCheckpointEvery = 60

// SessionSink receives finished timer runs. *ledger.Ledger satisfies it.
type SessionSink interface {
	ApplySession(subjectID, chapterID, topicID string, durationSeconds int64) error
}

// Result describes a finalized run.
type Result struct {
	Target         domain.TimerTarget
	ElapsedSeconds int64
}

// Controller tracks at most one running timer. It is not safe for
// concurrent use; callers serialize access.
type Controller struct {
	sink            SessionSink
	checkpointEvery int64
	onCheckpoint    func()

	active *domain.ActiveTimer
}

// Option configures a Controller.
type Option func(*Controller)

// WithCheckpointEvery sets the tick cadence of checkpoints. Values below 1
// keep the default.
func WithCheckpointEvery(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.checkpointEvery = int64(n)
		}
	}
}

// WithCheckpoint registers the function called whenever the timer wants its
// state persisted: on start, every checkpoint cadence while running, and on
// stop.
func WithCheckpoint(fn func()) Option {
	return func(c *Controller) {
		c.onCheckpoint = fn
	}
}

func New(sink SessionSink, opts ...Option) *Controller {
	c := &Controller{
		sink:            sink,
		checkpointEvery: DefaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) checkpoint() {
	if c.onCheckpoint != nil {
		c.onCheckpoint()
	}
}

// State reports whether a timer is running.
func (c *Controller) State() domain.TimerState {
	if c.active == nil {
		return domain.TimerIdle
	}
	return domain.TimerRunning
}

// Active returns a copy of the running timer.
func (c *Controller) Active() (domain.ActiveTimer, bool) {
	if c.active == nil {
		return domain.ActiveTimer{}, false
	}
	return *c.active, true
}

// Start begins timing target. A running timer is stopped first, and its
// result is returned as prev. The error from that implicit stop is returned
// too, but the new timer is started regardless.
func (c *Controller) Start(target domain.TimerTarget) (prev Result, err error) {
	if verr := target.Validate(); verr != nil {
		return Result{}, verr
	}
	if c.active != nil {
		prev, err = c.finalize()
	}
	c.active = &domain.ActiveTimer{Target: target}
	c.checkpoint()
	return prev, err
}

// Tick adds one second to the running timer and reports whether one was
// running.
func (c *Controller) Tick() bool {
	if c.active == nil {
		return false
	}
	c.active.ElapsedSeconds++
	if c.active.ElapsedSeconds%c.checkpointEvery == 0 {
		c.checkpoint()
	}
	return true
}

// Stop finalizes the running timer into a session. It is a no-op when idle.
// The controller is idle afterwards even if the ledger rejected the session,
// for example because the target was deleted while the timer ran.
func (c *Controller) Stop() (Result, error) {
	if c.active == nil {
		return Result{}, nil
	}
	res, err := c.finalize()
	c.checkpoint()
	return res, err
}

func (c *Controller) finalize() (Result, error) {
	res := Result{Target: c.active.Target, ElapsedSeconds: c.active.ElapsedSeconds}
	c.active = nil
	t := res.Target
	if err := c.sink.ApplySession(t.SubjectID, t.ChapterID, t.TopicID, res.ElapsedSeconds); err != nil {
		return res, fmt.Errorf("finalizing timer on %s: %w", t, err)
	}
	return res, nil
}

// Restore resumes a persisted running timer with its stored elapsed seconds.
// It replaces any current state without finalizing it.
func (c *Controller) Restore(active domain.ActiveTimer) error {
	if err := active.Target.Validate(); err != nil {
		return err
	}
	active.ElapsedSeconds = max(active.ElapsedSeconds, 0)
	c.active = &active
	return nil
}

// Reset drops the running timer without recording it.
func (c *Controller) Reset() {
	c.active = nil
}
