package domain

import "fmt"

// Violation describes one broken rollup rule found in a LedgerState.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// CheckConsistency walks the tree and reports every place where totals do not
// roll up, a chapter carries a negative manual residual, a session has a
// non-positive duration, or an id repeats within its collection.
func CheckConsistency(st LedgerState) []Violation {
	var out []Violation
	add := func(path, format string, args ...any) {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	seenSubjects := make(map[string]bool, len(st.Subjects))
	for _, s := range st.Subjects {
		sp := s.ID
		if seenSubjects[s.ID] {
			add(sp, "duplicate subject id")
		}
		seenSubjects[s.ID] = true
		if s.TotalTime < 0 {
			add(sp, "negative total %d", s.TotalTime)
		}
		if sum := s.ChapterSum(); sum != s.TotalTime {
			add(sp, "subject total %d != chapter sum %d", s.TotalTime, sum)
		}

		seenChapters := make(map[string]bool, len(s.Chapters))
		for _, c := range s.Chapters {
			cp := sp + "/" + c.ID
			if seenChapters[c.ID] {
				add(cp, "duplicate chapter id")
			}
			seenChapters[c.ID] = true
			if r := c.ManualResidual(); r < 0 {
				add(cp, "chapter total %d below topic sum %d", c.TotalTime, c.TopicSum())
			}

			seenTopics := make(map[string]bool, len(c.Topics))
			for _, t := range c.Topics {
				tp := cp + "/" + t.ID
				if seenTopics[t.ID] {
					add(tp, "duplicate topic id")
				}
				seenTopics[t.ID] = true
				if sum := t.SessionSum(); sum != t.TotalTime {
					add(tp, "topic total %d != session sum %d", t.TotalTime, sum)
				}
				for i, sess := range t.Sessions {
					if sess.DurationSeconds <= 0 {
						add(tp, "session %d has non-positive duration %d", i, sess.DurationSeconds)
					}
				}
			}
		}
	}
	return out
}
