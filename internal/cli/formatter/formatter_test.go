package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/stats"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "0s"},
		{"negative", -5, "0s"},
		{"seconds", 45, "45s"},
		{"minutes", 750, "12m 30s"},
		{"hours", 7500, "2h 05m"},
		{"exact hour", 3600, "1h 00m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:02:05", FormatClock(125))
	assert.Equal(t, "27:46:40", FormatClock(100000))
	assert.Equal(t, "00:00:00", FormatClock(-3))
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", HumanDate(now.Add(-time.Hour), now))
	assert.Equal(t, "Yesterday", HumanDate(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "Jan 1, 2027", HumanDate(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, "today", DaysUntil(0))
	assert.Equal(t, "1 day", DaysUntil(1))
	assert.Equal(t, "79 days", DaysUntil(79))
	assert.Equal(t, "13 days ago", DaysUntil(-13))
}

func TestRenderBar(t *testing.T) {
	bar := RenderBar(1, 2, 10)
	assert.Equal(t, 10, lipgloss.Width(bar))
	assert.Equal(t, 5, strings.Count(bar, filledBlock))

	assert.Equal(t, 0, strings.Count(RenderBar(0, 0, 10), filledBlock), "zero peak renders empty")
	assert.Equal(t, 1, strings.Count(RenderBar(0.01, 100, 10), filledBlock), "any study shows at least one block")
	assert.Equal(t, 10, strings.Count(RenderBar(5, 2, 10), filledBlock), "clamped to full")
}

func TestRenderShare(t *testing.T) {
	assert.Contains(t, RenderShare(0.5, 10), " 50%")
	assert.Contains(t, RenderShare(1.5, 10), "100%")
	assert.Contains(t, RenderShare(-1, 10), "  0%")
}

func TestRenderTable_RightAlign(t *testing.T) {
	out := RenderTable([]string{"NAME", "TOTAL"}, [][]string{{"Math", "5"}, {"History", "120"}}, 1)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[2], "    5"), "numbers pad on the left: %q", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "  120"))
	assert.Empty(t, RenderTable(nil, nil))
}

func studyState() domain.LedgerState {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return domain.LedgerState{Subjects: []domain.Subject{{
		ID: "s1", Name: "Math", TotalTime: 2400,
		Chapters: []domain.Chapter{
			{ID: "c1", Name: "Algebra", TotalTime: 2400, Topics: []domain.Topic{
				{ID: "t1", Name: "Groups", TotalTime: 600, Sessions: []domain.Session{{Timestamp: at, DurationSeconds: 600}}},
				{ID: "t2", Name: "Rings"},
			}},
			{ID: "c2", Name: "Calculus"},
		},
	}}}
}

func TestFormatStudyTree(t *testing.T) {
	active := domain.TimerTarget{SubjectID: "s1", ChapterID: "c1", TopicID: "t1"}
	out := FormatStudyTree(studyState(), &active)

	assert.Contains(t, out, "Math")
	assert.Contains(t, out, "├─ Algebra")
	assert.Contains(t, out, "└─ Calculus")
	assert.Contains(t, out, "▶ Groups")
	assert.Contains(t, out, "└─ Rings")
	assert.Contains(t, out, "[ 40m 00s ]")
	assert.Contains(t, out, "30m 00s manual")
	assert.Contains(t, out, "1 sessions")
}

func TestFormatStudyTree_Empty(t *testing.T) {
	assert.Contains(t, FormatStudyTree(domain.LedgerState{}, nil), "No subjects yet")
}

func TestFormatSubjectList(t *testing.T) {
	out := FormatSubjectList(studyState().Subjects)
	assert.Contains(t, out, "SUBJECT")
	assert.Contains(t, out, "Math")
	assert.Contains(t, out, "40m 00s")
}

func TestFormatViolations(t *testing.T) {
	assert.Contains(t, FormatViolations(nil), "All totals roll up")
	out := FormatViolations([]domain.Violation{{Path: "s1", Message: "subject total 5 != chapter sum 0"}})
	assert.Contains(t, out, "1 problem(s)")
	assert.Contains(t, out, "subject total 5")
}

func TestFormatBucketsAndSummary(t *testing.T) {
	st := studyState()
	ref := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)
	exam := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	buckets := stats.Compute(st, stats.Daily, ref, time.UTC)
	out := FormatBuckets(stats.Daily, buckets)
	assert.Contains(t, out, "STUDY HOURS (DAILY)")
	assert.Contains(t, out, "Wed")
	assert.Contains(t, out, "0.2h")

	sum := FormatSummary(stats.Summarize(st, ref, time.UTC, exam), ref)
	assert.Contains(t, sum, "40m 00s")
	assert.Contains(t, sum, "79 days")
	assert.Contains(t, sum, "Jan 1, 2027")
	assert.Contains(t, sum, "100%")
}

func TestFormatTimerLine(t *testing.T) {
	out := FormatTimerLine("Math", "Algebra", "Groups", 125)
	assert.Contains(t, out, "Groups")
	assert.Contains(t, out, "00:02:05")
}
