package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

func (w *Workspace) AddSubject(ctx context.Context, name string) (s domain.Subject, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": name}
	defer w.observe(ctx, "add-subject", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	s, err = w.ledger.AddSubject(name)
	if err != nil {
		return domain.Subject{}, err
	}
	fields["subject_id"] = s.ID
	w.checkpointLocked()
	return s, nil
}

func (w *Workspace) AddChapter(ctx context.Context, subjectID, name string) (c domain.Chapter, err error) {
	startedAt := time.Now()
	fields := map[string]any{"subject_id": subjectID, "name": name}
	defer w.observe(ctx, "add-chapter", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	c, err = w.ledger.AddChapter(subjectID, name)
	if err != nil {
		return domain.Chapter{}, err
	}
	fields["chapter_id"] = c.ID
	w.checkpointLocked()
	return c, nil
}

func (w *Workspace) AddTopic(ctx context.Context, subjectID, chapterID, name string) (t domain.Topic, err error) {
	startedAt := time.Now()
	fields := map[string]any{"subject_id": subjectID, "chapter_id": chapterID, "name": name}
	defer w.observe(ctx, "add-topic", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	t, err = w.ledger.AddTopic(subjectID, chapterID, name)
	if err != nil {
		return domain.Topic{}, err
	}
	fields["topic_id"] = t.ID
	w.checkpointLocked()
	return t, nil
}

// LogManual records untimed study on a chapter and returns the seconds
// applied. Zero seconds is a no-op and writes nothing.
func (w *Workspace) LogManual(ctx context.Context, subjectID, chapterID string, hours, minutes int) (seconds int64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"subject_id": subjectID, "chapter_id": chapterID, "hours": hours, "minutes": minutes}
	defer w.observe(ctx, "log-manual", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	seconds, err = w.ledger.ApplyManualLog(subjectID, chapterID, hours, minutes)
	if err != nil {
		return 0, err
	}
	fields["seconds"] = seconds
	if seconds > 0 {
		w.checkpointLocked()
	}
	return seconds, nil
}

// Delete removes a node and its subtree. A running timer on a deleted topic
// keeps running; its session is dropped when it stops.
func (w *Workspace) Delete(ctx context.Context, kind domain.NodeKind, ids ...string) (removed int64, err error) {
	startedAt := time.Now()
	fields := map[string]any{"kind": string(kind), "ids": ids}
	defer w.observe(ctx, "delete", startedAt, &err, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	removed, err = w.ledger.Delete(kind, ids...)
	if err != nil {
		return 0, err
	}
	fields["removed_seconds"] = removed
	w.clearSelectionLocked()
	w.checkpointLocked()
	return removed, nil
}

// clearSelectionLocked drops selected ids that no longer resolve.
func (w *Workspace) clearSelectionLocked() {
	if w.selection.SubjectID == "" {
		return
	}
	if _, err := w.ledger.Subject(w.selection.SubjectID); err != nil {
		w.selection = Selection{}
		return
	}
	if w.selection.ChapterID == "" {
		return
	}
	if _, err := w.ledger.Chapter(w.selection.SubjectID, w.selection.ChapterID); err != nil {
		w.selection.ChapterID = ""
	}
}

func (w *Workspace) ResolvePath(_ context.Context, refs ...string) ([]string, error) {
	if len(refs) == 0 || len(refs) > 3 {
		return nil, fmt.Errorf("a path has one to three segments, got %d: %w", len(refs), domain.ErrValidation)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, 0, len(refs))
	subjectID, err := w.ledger.ResolveSubject(refs[0])
	if err != nil {
		return nil, err
	}
	ids = append(ids, subjectID)
	if len(refs) == 1 {
		return ids, nil
	}
	chapterID, err := w.ledger.ResolveChapter(subjectID, refs[1])
	if err != nil {
		return nil, err
	}
	ids = append(ids, chapterID)
	if len(refs) == 2 {
		return ids, nil
	}
	topicID, err := w.ledger.ResolveTopic(subjectID, chapterID, refs[2])
	if err != nil {
		return nil, err
	}
	return append(ids, topicID), nil
}

func (w *Workspace) Tree(context.Context) domain.LedgerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Snapshot()
}

// Check reports every rollup violation in the current tree.
func (w *Workspace) Check(context.Context) []domain.Violation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.CheckConsistency(w.ledger.Snapshot())
}

// Select sets the browsing selection. An empty ChapterID selects the whole
// subject; an empty selection clears it.
func (w *Workspace) Select(_ context.Context, sel Selection) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sel.SubjectID == "" {
		if sel.ChapterID != "" {
			return fmt.Errorf("a chapter selection needs a subject: %w", domain.ErrValidation)
		}
		w.selection = Selection{}
		return nil
	}
	if sel.ChapterID == "" {
		if _, err := w.ledger.Subject(sel.SubjectID); err != nil {
			return err
		}
	} else if _, err := w.ledger.Chapter(sel.SubjectID, sel.ChapterID); err != nil {
		return err
	}
	w.selection = sel
	return nil
}

func (w *Workspace) Selection(context.Context) Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}
