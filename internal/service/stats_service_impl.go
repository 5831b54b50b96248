package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyfocus/internal/stats"
)

// Report buckets the recorded sessions as of the workspace clock.
func (w *Workspace) Report(ctx context.Context, g stats.Granularity) (r *Report, err error) {
	startedAt := time.Now()
	fields := map[string]any{"view": string(g)}
	defer w.observe(ctx, "stats-report", startedAt, &err, fields)

	if g == "" {
		g = stats.Daily
	}
	if g, err = stats.ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	w.mu.Lock()
	st := w.ledger.Snapshot()
	w.mu.Unlock()

	ref := w.clock.Now().In(w.loc)
	r = &Report{
		Granularity: g,
		Reference:   ref,
		Location:    w.loc,
		Buckets:     stats.Compute(st, g, ref, w.loc),
		Summary:     stats.Summarize(st, ref, w.loc, w.examDate),
	}
	fields["sessions"] = r.Summary.SessionCount
	return r, nil
}
