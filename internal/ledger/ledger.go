// Package ledger holds the subject → chapter → topic tree and keeps every
// aggregate total consistent as nodes and sessions are added or removed.
//
// Entities live in an arena: ordered child slices give display order, and
// index maps keyed by id path give constant-time lookups. Mutations happen in
// place. A Ledger is not safe for concurrent use; the owning application
// context serializes access behind its mutation lock.
package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/studyfocus/internal/clock"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/google/uuid"
)

type topicNode struct {
	id       string
	name     string
	total    int64
	sessions []domain.Session
}

type chapterNode struct {
	id     string
	name   string
	total  int64
	topics []*topicNode
}

type subjectNode struct {
	id       string
	name     string
	total    int64
	chapters []*chapterNode
}

type chapterKey struct{ subjectID, chapterID string }

type topicKey struct{ subjectID, chapterID, topicID string }

// Ledger is the in-memory study tree.
type Ledger struct {
	clock clock.Clock
	newID func() string

	subjects []*subjectNode
	subjIdx  map[string]*subjectNode
	chapIdx  map[chapterKey]*chapterNode
	topicIdx map[topicKey]*topicNode
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to timestamp sessions.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new nodes.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		clock: clock.System{},
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.subjects = nil
	l.subjIdx = make(map[string]*subjectNode)
	l.chapIdx = make(map[chapterKey]*chapterNode)
	l.topicIdx = make(map[topicKey]*topicNode)
}

func validName(kind domain.NodeKind, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%s name must not be empty: %w", kind, domain.ErrValidation)
	}
	return trimmed, nil
}

// freshID draws ids until one is free in the target collection.
func (l *Ledger) freshID(taken func(string) bool) string {
	for {
		id := l.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

// AddSubject appends a new subject with zero totals.
func (l *Ledger) AddSubject(name string) (domain.Subject, error) {
	name, err := validName(domain.KindSubject, name)
	if err != nil {
		return domain.Subject{}, err
	}
	id := l.freshID(func(id string) bool { return l.subjIdx[id] != nil })
	s := &subjectNode{id: id, name: name}
	l.subjects = append(l.subjects, s)
	l.subjIdx[id] = s
	return s.export(), nil
}

// AddChapter appends a new chapter to the subject.
func (l *Ledger) AddChapter(subjectID, name string) (domain.Chapter, error) {
	name, err := validName(domain.KindChapter, name)
	if err != nil {
		return domain.Chapter{}, err
	}
	s, err := l.lookupSubject(subjectID)
	if err != nil {
		return domain.Chapter{}, err
	}
	id := l.freshID(func(id string) bool { return l.chapIdx[chapterKey{subjectID, id}] != nil })
	c := &chapterNode{id: id, name: name}
	s.chapters = append(s.chapters, c)
	l.chapIdx[chapterKey{subjectID, id}] = c
	return c.export(), nil
}

// AddTopic appends a new topic to the chapter.
func (l *Ledger) AddTopic(subjectID, chapterID, name string) (domain.Topic, error) {
	name, err := validName(domain.KindTopic, name)
	if err != nil {
		return domain.Topic{}, err
	}
	_, c, err := l.lookupChapter(subjectID, chapterID)
	if err != nil {
		return domain.Topic{}, err
	}
	id := l.freshID(func(id string) bool { return l.topicIdx[topicKey{subjectID, chapterID, id}] != nil })
	t := &topicNode{id: id, name: name}
	c.topics = append(c.topics, t)
	l.topicIdx[topicKey{subjectID, chapterID, id}] = t
	return t.export(), nil
}

// ApplySession records a finished timer run of durationSeconds on the topic
// and adds it to the topic, chapter and subject totals. Non-positive
// durations are ignored.
func (l *Ledger) ApplySession(subjectID, chapterID, topicID string, durationSeconds int64) error {
	if durationSeconds <= 0 {
		return nil
	}
	s, c, t, err := l.lookupTopic(subjectID, chapterID, topicID)
	if err != nil {
		return err
	}
	t.sessions = append(t.sessions, domain.Session{
		Timestamp:       l.clock.Now(),
		DurationSeconds: durationSeconds,
	})
	t.total += durationSeconds
	c.total += durationSeconds
	s.total += durationSeconds
	return nil
}

// MaxManualHours bounds a single manual log entry.
const MaxManualHours = 100_000

// ApplyManualLog adds hours and minutes of untimed study to the chapter and
// subject totals and returns the seconds applied. Negative components count
// as zero. Manual time belongs to the chapter, not to any topic, so no
// session is created. Entries above MaxManualHours are rejected.
func (l *Ledger) ApplyManualLog(subjectID, chapterID string, hours, minutes int) (int64, error) {
	hours, minutes = max(hours, 0), max(minutes, 0)
	if hours > MaxManualHours || minutes > MaxManualHours*60 ||
		hours*60+minutes > MaxManualHours*60 {
		return 0, fmt.Errorf("manual log of %dh %dm exceeds %d hours: %w", hours, minutes, MaxManualHours, domain.ErrValidation)
	}
	seconds := int64(hours)*3600 + int64(minutes)*60
	if seconds <= 0 {
		return 0, nil
	}
	s, c, err := l.lookupChapter(subjectID, chapterID)
	if err != nil {
		return 0, err
	}
	c.total += seconds
	s.total += seconds
	return seconds, nil
}

// Delete removes the node addressed by ids (one id per level, subject first)
// together with its descendants and subtracts its total from every ancestor.
// It returns the seconds removed. Unknown ids are ignored.
func (l *Ledger) Delete(kind domain.NodeKind, ids ...string) (int64, error) {
	depth := kind.Depth()
	if depth == 0 {
		return 0, fmt.Errorf("unknown node kind %q: %w", kind, domain.ErrValidation)
	}
	if len(ids) != depth {
		return 0, fmt.Errorf("deleting a %s needs %d ids, got %d: %w", kind, depth, len(ids), domain.ErrValidation)
	}

	switch kind {
	case domain.KindSubject:
		s := l.subjIdx[ids[0]]
		if s == nil {
			return 0, nil
		}
		l.subjects = removeNode(l.subjects, s)
		l.unindexSubject(s)
		return s.total, nil

	case domain.KindChapter:
		s, c, err := l.lookupChapter(ids[0], ids[1])
		if err != nil {
			return 0, nil
		}
		s.total -= c.total
		s.chapters = removeNode(s.chapters, c)
		l.unindexChapter(s.id, c)
		return c.total, nil

	default:
		s, c, t, err := l.lookupTopic(ids[0], ids[1], ids[2])
		if err != nil {
			return 0, nil
		}
		c.total -= t.total
		s.total -= t.total
		c.topics = removeNode(c.topics, t)
		delete(l.topicIdx, topicKey{s.id, c.id, t.id})
		return t.total, nil
	}
}

func removeNode[T comparable](nodes []T, target T) []T {
	i := slices.Index(nodes, target)
	if i < 0 {
		return nodes
	}
	return slices.Delete(nodes, i, i+1)
}

func (l *Ledger) unindexSubject(s *subjectNode) {
	if l.subjIdx[s.id] == s {
		delete(l.subjIdx, s.id)
	}
	for _, c := range s.chapters {
		l.unindexChapter(s.id, c)
	}
}

func (l *Ledger) unindexChapter(subjectID string, c *chapterNode) {
	key := chapterKey{subjectID, c.id}
	if l.chapIdx[key] == c {
		delete(l.chapIdx, key)
	}
	for _, t := range c.topics {
		tk := topicKey{subjectID, c.id, t.id}
		if l.topicIdx[tk] == t {
			delete(l.topicIdx, tk)
		}
	}
}

func (l *Ledger) lookupSubject(subjectID string) (*subjectNode, error) {
	s := l.subjIdx[subjectID]
	if s == nil {
		return nil, fmt.Errorf("subject %q: %w", subjectID, domain.ErrNotFound)
	}
	return s, nil
}

func (l *Ledger) lookupChapter(subjectID, chapterID string) (*subjectNode, *chapterNode, error) {
	s, err := l.lookupSubject(subjectID)
	if err != nil {
		return nil, nil, err
	}
	c := l.chapIdx[chapterKey{subjectID, chapterID}]
	if c == nil {
		return nil, nil, fmt.Errorf("chapter %q in subject %q: %w", chapterID, subjectID, domain.ErrNotFound)
	}
	return s, c, nil
}

func (l *Ledger) lookupTopic(subjectID, chapterID, topicID string) (*subjectNode, *chapterNode, *topicNode, error) {
	s, c, err := l.lookupChapter(subjectID, chapterID)
	if err != nil {
		return nil, nil, nil, err
	}
	t := l.topicIdx[topicKey{subjectID, chapterID, topicID}]
	if t == nil {
		return nil, nil, nil, fmt.Errorf("topic %q in chapter %q: %w", topicID, chapterID, domain.ErrNotFound)
	}
	return s, c, t, nil
}
