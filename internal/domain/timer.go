package domain

import "fmt"

// TimerTarget addresses the topic a timer is running against.
type TimerTarget struct {
	SubjectID string
	ChapterID string
	TopicID   string
}

// Validate checks that every segment of the path is set.
func (t TimerTarget) Validate() error {
	if t.SubjectID == "" || t.ChapterID == "" || t.TopicID == "" {
		return fmt.Errorf("timer target needs subject, chapter and topic ids: %w", ErrValidation)
	}
	return nil
}

func (t TimerTarget) String() string {
	return t.SubjectID + "/" + t.ChapterID + "/" + t.TopicID
}

// ActiveTimer is the single running timer, if any.
type ActiveTimer struct {
	Target         TimerTarget
	ElapsedSeconds int64
}
