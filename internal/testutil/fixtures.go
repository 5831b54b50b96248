package testutil

import (
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/google/uuid"
)

// Topic options
type TopicOption func(*domain.Topic)

// WithSessions appends sessions and adds them to the topic total.
func WithSessions(sessions ...domain.Session) TopicOption {
	return func(t *domain.Topic) {
		for _, s := range sessions {
			t.Sessions = append(t.Sessions, s)
			t.TotalTime += s.DurationSeconds
		}
	}
}

func WithTopicID(id string) TopicOption {
	return func(t *domain.Topic) {
		t.ID = id
	}
}

func NewTestSession(at time.Time, seconds int64) domain.Session {
	return domain.Session{Timestamp: at, DurationSeconds: seconds}
}

func NewTestTopic(name string, opts ...TopicOption) domain.Topic {
	t := domain.Topic{ID: uuid.New().String(), Name: name}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Chapter options
type ChapterOption func(*domain.Chapter)

// WithTopics appends topics and adds their totals to the chapter.
func WithTopics(topics ...domain.Topic) ChapterOption {
	return func(c *domain.Chapter) {
		for _, t := range topics {
			c.Topics = append(c.Topics, t)
			c.TotalTime += t.TotalTime
		}
	}
}

// WithManualSeconds adds manually logged time to the chapter.
func WithManualSeconds(seconds int64) ChapterOption {
	return func(c *domain.Chapter) {
		c.TotalTime += seconds
	}
}

func WithChapterID(id string) ChapterOption {
	return func(c *domain.Chapter) {
		c.ID = id
	}
}

func NewTestChapter(name string, opts ...ChapterOption) domain.Chapter {
	c := domain.Chapter{ID: uuid.New().String(), Name: name, Topics: []domain.Topic{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Subject options
type SubjectOption func(*domain.Subject)

// WithChapters appends chapters and adds their totals to the subject.
func WithChapters(chapters ...domain.Chapter) SubjectOption {
	return func(s *domain.Subject) {
		for _, c := range chapters {
			s.Chapters = append(s.Chapters, c)
			s.TotalTime += c.TotalTime
		}
	}
}

func WithSubjectID(id string) SubjectOption {
	return func(s *domain.Subject) {
		s.ID = id
	}
}

func NewTestSubject(name string, opts ...SubjectOption) domain.Subject {
	s := domain.Subject{ID: uuid.New().String(), Name: name, Chapters: []domain.Chapter{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func NewTestState(subjects ...domain.Subject) domain.LedgerState {
	return domain.LedgerState{Subjects: append([]domain.Subject{}, subjects...)}
}

// NewMathState returns a small consistent tree: Math / Algebra / Groups with
// one 600s session at `at` and 1800s of manual time on Algebra.
func NewMathState(at time.Time) domain.LedgerState {
	return NewTestState(
		NewTestSubject("Math", WithSubjectID("s1"), WithChapters(
			NewTestChapter("Algebra", WithChapterID("c1"), WithManualSeconds(1800), WithTopics(
				NewTestTopic("Groups", WithTopicID("t1"), WithSessions(NewTestSession(at, 600))),
			)),
		)),
	)
}
