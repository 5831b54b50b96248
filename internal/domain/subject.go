package domain

import "time"

// Session is one finished timer run on a topic. Sessions are never edited
// after creation.
type Session struct {
	Timestamp       time.Time
	DurationSeconds int64
}

type Topic struct {
	ID        string
	Name      string
	TotalTime int64 // seconds, always the sum of Sessions
	Sessions  []Session
}

type Chapter struct {
	ID        string
	Name      string
	Topics    []Topic
	TotalTime int64 // seconds, topic totals plus manually logged time
}

type Subject struct {
	ID        string
	Name      string
	Chapters  []Chapter
	TotalTime int64 // seconds, always the sum of chapter totals
}

// LedgerState is a detached copy of the whole study tree.
type LedgerState struct {
	Subjects []Subject
}

// TopicSum returns the sum of the chapter's topic totals.
func (c Chapter) TopicSum() int64 {
	var sum int64
	for _, t := range c.Topics {
		sum += t.TotalTime
	}
	return sum
}

// ManualResidual returns the manually logged seconds recorded on the chapter,
// i.e. the part of the chapter total no topic accounts for.
func (c Chapter) ManualResidual() int64 {
	return c.TotalTime - c.TopicSum()
}

// ChapterSum returns the sum of the subject's chapter totals.
func (s Subject) ChapterSum() int64 {
	var sum int64
	for _, c := range s.Chapters {
		sum += c.TotalTime
	}
	return sum
}

// SessionSum returns the sum of the topic's session durations.
func (t Topic) SessionSum() int64 {
	var sum int64
	for _, s := range t.Sessions {
		sum += s.DurationSeconds
	}
	return sum
}

// TotalTime returns the study time across all subjects.
func (st LedgerState) TotalTime() int64 {
	var sum int64
	for _, s := range st.Subjects {
		sum += s.TotalTime
	}
	return sum
}

// EachSession calls fn for every session in tree order.
func (st LedgerState) EachSession(fn func(Session)) {
	for _, s := range st.Subjects {
		for _, c := range s.Chapters {
			for _, t := range c.Topics {
				for _, sess := range t.Sessions {
					fn(sess)
				}
			}
		}
	}
}

// SessionCount returns the number of recorded sessions.
func (st LedgerState) SessionCount() int {
	n := 0
	st.EachSession(func(Session) { n++ })
	return n
}

// Clone returns a deep copy of the state.
func (st LedgerState) Clone() LedgerState {
	out := LedgerState{Subjects: make([]Subject, len(st.Subjects))}
	for i, s := range st.Subjects {
		out.Subjects[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the subject.
func (s Subject) Clone() Subject {
	cp := s
	cp.Chapters = make([]Chapter, len(s.Chapters))
	for i, c := range s.Chapters {
		cp.Chapters[i] = c.Clone()
	}
	return cp
}

// Clone returns a deep copy of the chapter.
func (c Chapter) Clone() Chapter {
	cp := c
	cp.Topics = make([]Topic, len(c.Topics))
	for i, t := range c.Topics {
		cp.Topics[i] = t.Clone()
	}
	return cp
}

// Clone returns a deep copy of the topic.
func (t Topic) Clone() Topic {
	cp := t
	cp.Sessions = append([]Session(nil), t.Sessions...)
	return cp
}
