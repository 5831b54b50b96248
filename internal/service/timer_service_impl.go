package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/timer"
)

// Start begins timing the topic and starts the tick loop. A running timer is
// finalized first and returned as prev.
func (w *Workspace) Start(ctx context.Context, target domain.TimerTarget) (prev timer.Result, err error) {
	startedAt := time.Now()
	fields := map[string]any{"target": target.String()}
	defer w.observe(ctx, "timer-start", startedAt, &err, fields)

	if err = target.Validate(); err != nil {
		return timer.Result{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return timer.Result{}, ErrClosed
	}
	if _, err = w.ledger.Topic(target.SubjectID, target.ChapterID, target.TopicID); err != nil {
		return timer.Result{}, err
	}

	w.stopTickingLocked()
	prev, stopErr := w.timer.Start(target)
	if prev.Target != (domain.TimerTarget{}) {
		fields["finalized_target"] = prev.Target.String()
		fields["finalized_seconds"] = prev.ElapsedSeconds
	}
	if stopErr != nil {
		// The previous target vanished; its time is lost, the new timer runs.
		w.logger.WarnContext(ctx, "previous timer dropped", "error", stopErr)
		fields["finalize_error"] = stopErr.Error()
	}
	w.startTickingLocked()
	return prev, nil
}

// Stop finalizes the running timer into a session and stops ticking. When
// the timed topic was deleted meanwhile, the error is returned but the timer
// is idle all the same.
func (w *Workspace) Stop(ctx context.Context) (res timer.Result, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer w.observe(ctx, "timer-stop", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTickingLocked()
	res, err = w.timer.Stop()
	fields["target"] = res.Target.String()
	fields["seconds"] = res.ElapsedSeconds
	if err != nil && isNotFound(err) {
		w.logger.WarnContext(ctx, "timer target was deleted, session dropped", "target", res.Target.String())
	}
	return res, err
}

// Resume starts the tick loop for a timer restored by Load and reports
// whether one was restored.
func (w *Workspace) Resume(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer.State() != domain.TimerRunning || w.closed {
		return false
	}
	if w.stopTicking == nil {
		w.startTickingLocked()
	}
	return true
}

func (w *Workspace) Status(context.Context) TimerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	active, ok := w.timer.Active()
	if !ok {
		return TimerStatus{}
	}
	st := TimerStatus{Running: true, Target: active.Target, ElapsedSeconds: active.ElapsedSeconds}
	t := active.Target
	if s, err := w.ledger.Subject(t.SubjectID); err == nil {
		st.SubjectName = s.Name
	}
	if c, err := w.ledger.Chapter(t.SubjectID, t.ChapterID); err == nil {
		st.ChapterName = c.Name
	}
	if tp, err := w.ledger.Topic(t.SubjectID, t.ChapterID, t.TopicID); err == nil {
		st.TopicName = tp.Name
	}
	return st
}
