package domain

import (
	"fmt"
	"strings"
)

// NodeKind names a level of the study hierarchy.
type NodeKind string

const (
	KindSubject NodeKind = "subject"
	KindChapter NodeKind = "chapter"
	KindTopic   NodeKind = "topic"
)

// ValidNodeKinds is the canonical set of accepted node kind strings.
var ValidNodeKinds = map[string]bool{
	"subject": true, "chapter": true, "topic": true,
}

// ParseNodeKind converts user input into a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if !ValidNodeKinds[k] {
		return "", fmt.Errorf("node kind %q must be one of subject, chapter, topic: %w", s, ErrValidation)
	}
	return NodeKind(k), nil
}

// Depth returns how many ids address a node of this kind
// (subject = 1, chapter = 2, topic = 3). Unknown kinds return 0.
func (k NodeKind) Depth() int {
	switch k {
	case KindSubject:
		return 1
	case KindChapter:
		return 2
	case KindTopic:
		return 3
	default:
		return 0
	}
}

// TimerState is the state of the timer controller.
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
)
