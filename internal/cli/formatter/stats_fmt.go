package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyfocus/internal/stats"
)

const barWidth = 24

// FormatBuckets renders one bar per bucket, scaled to the busiest bucket.
func FormatBuckets(g stats.Granularity, buckets []stats.Bucket) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Study hours (%s)", g)) + "\n")
	peak := stats.MaxHours(buckets)
	labelWidth := 0
	for _, bk := range buckets {
		labelWidth = max(labelWidth, len(bk.Label))
	}
	for _, bk := range buckets {
		fmt.Fprintf(&b, "%-*s  %s  %s\n", labelWidth, bk.Label, RenderBar(bk.Hours, peak, barWidth), FormatHours(bk.Hours))
	}
	return b.String()
}

// FormatSummary renders the headline figures and the per-subject breakdown.
func FormatSummary(sum stats.Summary, ref time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Summary") + "\n")
	rows := [][]string{
		{"Total study time", Bold(FormatDuration(sum.TotalSeconds))},
		{"Subjects", fmt.Sprintf("%d", sum.SubjectCount)},
		{"Sessions", fmt.Sprintf("%d", sum.SessionCount)},
		{"Average per day", FormatDuration(sum.AvgPerDaySeconds) + Dim(" (last 7 days)")},
	}
	if !sum.ExamDate.IsZero() {
		rows = append(rows, []string{
			"Exam",
			ExamStyle(sum.DaysUntilExam).Render(DaysUntil(sum.DaysUntilExam)) +
				Dim(" ("+HumanDate(sum.ExamDate, ref)+")"),
		})
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%-18s%s\n", r[0], r[1])
	}

	if len(sum.Subjects) == 0 {
		return b.String()
	}
	b.WriteString("\n" + Header("By subject") + "\n")
	table := make([][]string, 0, len(sum.Subjects))
	for _, s := range sum.Subjects {
		table = append(table, []string{s.Name, FormatDuration(s.TotalSeconds), RenderShare(s.Share, 16)})
	}
	b.WriteString(RenderTable([]string{"SUBJECT", "TIME", "SHARE"}, table, 1))
	return b.String()
}
