package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/stats"
	"github.com/alexanderramin/studyfocus/internal/timer"
)

// Selection is the subject and chapter the user is currently browsing.
// Either id may be empty.
type Selection struct {
	SubjectID string
	ChapterID string
}

type StudyService interface {
	AddSubject(ctx context.Context, name string) (domain.Subject, error)
	AddChapter(ctx context.Context, subjectID, name string) (domain.Chapter, error)
	AddTopic(ctx context.Context, subjectID, chapterID, name string) (domain.Topic, error)
	LogManual(ctx context.Context, subjectID, chapterID string, hours, minutes int) (int64, error)
	Delete(ctx context.Context, kind domain.NodeKind, ids ...string) (int64, error)

	// ResolvePath maps one to three ids or names (subject first) to ids.
	ResolvePath(ctx context.Context, refs ...string) ([]string, error)
	Tree(ctx context.Context) domain.LedgerState
	Check(ctx context.Context) []domain.Violation

	Select(ctx context.Context, sel Selection) error
	Selection(ctx context.Context) Selection
}

// TimerStatus describes the running timer with display names resolved.
type TimerStatus struct {
	Running        bool
	Target         domain.TimerTarget
	SubjectName    string
	ChapterName    string
	TopicName      string
	ElapsedSeconds int64
}

type TimerService interface {
	Start(ctx context.Context, target domain.TimerTarget) (timer.Result, error)
	Stop(ctx context.Context) (timer.Result, error)
	// Resume restarts ticking for a timer restored by Load.
	Resume(ctx context.Context) bool
	Status(ctx context.Context) TimerStatus
}

// Report is one rendering of the stats screen.
type Report struct {
	Granularity stats.Granularity
	Reference   time.Time
	Location    *time.Location
	Buckets     []stats.Bucket
	Summary     stats.Summary
}

type StatsService interface {
	Report(ctx context.Context, g stats.Granularity) (*Report, error)
}

var (
	_ StudyService = (*Workspace)(nil)
	_ TimerService = (*Workspace)(nil)
	_ StatsService = (*Workspace)(nil)
)
