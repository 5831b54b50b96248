package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// FormatStudyTree renders the whole hierarchy with totals. active marks the
// topic the timer is running on and may be nil.
func FormatStudyTree(st domain.LedgerState, active *domain.TimerTarget) string {
	if len(st.Subjects) == 0 {
		return Dim("No subjects yet. Add one with: studyfocus subject add NAME") + "\n"
	}

	var items []TreeItem
	for _, s := range st.Subjects {
		items = append(items, TreeItem{Title: s.Name, Detail: FormatDuration(s.TotalTime)})
		for ci, c := range s.Chapters {
			detail := FormatDuration(c.TotalTime)
			if manual := c.ManualResidual(); manual > 0 {
				detail += ", " + FormatDuration(manual) + " manual"
			}
			items = append(items, TreeItem{
				Title:  c.Name,
				Level:  1,
				IsLast: ci == len(s.Chapters)-1,
				Detail: detail,
			})
			for ti, t := range c.Topics {
				isActive := active != nil && *active == domain.TimerTarget{SubjectID: s.ID, ChapterID: c.ID, TopicID: t.ID}
				items = append(items, TreeItem{
					Title:  t.Name,
					Level:  2,
					IsLast: ti == len(c.Topics)-1,
					Active: isActive,
					Detail: fmt.Sprintf("%s, %d sessions", FormatDuration(t.TotalTime), len(t.Sessions)),
				})
			}
		}
	}
	return RenderTree(items)
}

// FormatSubjectList renders subjects as a table with chapter counts and totals.
func FormatSubjectList(subjects []domain.Subject) string {
	if len(subjects) == 0 {
		return Dim("No subjects yet.") + "\n"
	}
	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, []string{
			Dim(s.ID),
			s.Name,
			strconv.Itoa(len(s.Chapters)),
			FormatDuration(s.TotalTime),
		})
	}
	return RenderTable([]string{"ID", "SUBJECT", "CHAPTERS", "TOTAL"}, rows, 2, 3)
}

// FormatViolations renders a consistency report.
func FormatViolations(vs []domain.Violation) string {
	if len(vs) == 0 {
		return Success("All totals roll up.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Warning(fmt.Sprintf("%d problem(s) found", len(vs))) + "\n")
	for _, v := range vs {
		b.WriteString("  " + Dim(v.Path) + "  " + v.Message + "\n")
	}
	return b.String()
}

// FormatTimerLine renders "Subject › Chapter › Topic  HH:MM:SS".
func FormatTimerLine(subject, chapter, topic string, elapsed int64) string {
	path := strings.Join([]string{subject, chapter, topic}, Dim(" › "))
	return path + "  " + StyleYellowBold.Render(FormatClock(elapsed))
}
