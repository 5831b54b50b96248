package ledger

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

func (t *topicNode) export() domain.Topic {
	return domain.Topic{
		ID:        t.id,
		Name:      t.name,
		TotalTime: t.total,
		Sessions:  append([]domain.Session(nil), t.sessions...),
	}
}

func (c *chapterNode) export() domain.Chapter {
	out := domain.Chapter{ID: c.id, Name: c.name, TotalTime: c.total, Topics: make([]domain.Topic, 0, len(c.topics))}
	for _, t := range c.topics {
		out.Topics = append(out.Topics, t.export())
	}
	return out
}

func (s *subjectNode) export() domain.Subject {
	out := domain.Subject{ID: s.id, Name: s.name, TotalTime: s.total, Chapters: make([]domain.Chapter, 0, len(s.chapters))}
	for _, c := range s.chapters {
		out.Chapters = append(out.Chapters, c.export())
	}
	return out
}

// Snapshot returns a deep copy of the whole tree.
func (l *Ledger) Snapshot() domain.LedgerState {
	st := domain.LedgerState{Subjects: make([]domain.Subject, 0, len(l.subjects))}
	for _, s := range l.subjects {
		st.Subjects = append(st.Subjects, s.export())
	}
	return st
}

// Hydrate replaces the tree with st. Stored totals are kept as they are so
// that a load followed by a save reproduces the same blob; any rollup
// violations found in st are returned for the caller to report.
// When an id repeats within a collection only its first occurrence is
// addressable.
func (l *Ledger) Hydrate(st domain.LedgerState) []domain.Violation {
	l.reset()
	for _, s := range st.Subjects {
		sn := &subjectNode{id: s.ID, name: s.Name, total: s.TotalTime}
		l.subjects = append(l.subjects, sn)
		if l.subjIdx[s.ID] == nil {
			l.subjIdx[s.ID] = sn
		}
		for _, c := range s.Chapters {
			cn := &chapterNode{id: c.ID, name: c.Name, total: c.TotalTime}
			sn.chapters = append(sn.chapters, cn)
			ck := chapterKey{s.ID, c.ID}
			if l.subjIdx[s.ID] == sn && l.chapIdx[ck] == nil {
				l.chapIdx[ck] = cn
			}
			for _, t := range c.Topics {
				tn := &topicNode{id: t.ID, name: t.Name, total: t.TotalTime}
				tn.sessions = append([]domain.Session(nil), t.Sessions...)
				cn.topics = append(cn.topics, tn)
				tk := topicKey{s.ID, c.ID, t.ID}
				if l.chapIdx[ck] == cn && l.topicIdx[tk] == nil {
					l.topicIdx[tk] = tn
				}
			}
		}
	}
	return domain.CheckConsistency(st)
}

// Len returns the number of subjects.
func (l *Ledger) Len() int {
	return len(l.subjects)
}

// TotalTime returns the summed totals of all subjects.
func (l *Ledger) TotalTime() int64 {
	var sum int64
	for _, s := range l.subjects {
		sum += s.total
	}
	return sum
}

// Subjects returns copies of all subjects in order.
func (l *Ledger) Subjects() []domain.Subject {
	return l.Snapshot().Subjects
}

// Subject returns a copy of one subject.
func (l *Ledger) Subject(subjectID string) (domain.Subject, error) {
	s, err := l.lookupSubject(subjectID)
	if err != nil {
		return domain.Subject{}, err
	}
	return s.export(), nil
}

// Chapter returns a copy of one chapter.
func (l *Ledger) Chapter(subjectID, chapterID string) (domain.Chapter, error) {
	_, c, err := l.lookupChapter(subjectID, chapterID)
	if err != nil {
		return domain.Chapter{}, err
	}
	return c.export(), nil
}

// Topic returns a copy of one topic.
func (l *Ledger) Topic(subjectID, chapterID, topicID string) (domain.Topic, error) {
	_, _, t, err := l.lookupTopic(subjectID, chapterID, topicID)
	if err != nil {
		return domain.Topic{}, err
	}
	return t.export(), nil
}

// ResolveSubject maps an id or a case-insensitive name to a subject id.
func (l *Ledger) ResolveSubject(ref string) (string, error) {
	refs := make([]namedRef, 0, len(l.subjects))
	for _, s := range l.subjects {
		refs = append(refs, namedRef{s.id, s.name})
	}
	return resolveRef(domain.KindSubject, ref, refs)
}

// ResolveChapter maps an id or name to a chapter id within the subject.
func (l *Ledger) ResolveChapter(subjectID, ref string) (string, error) {
	s, err := l.lookupSubject(subjectID)
	if err != nil {
		return "", err
	}
	refs := make([]namedRef, 0, len(s.chapters))
	for _, c := range s.chapters {
		refs = append(refs, namedRef{c.id, c.name})
	}
	return resolveRef(domain.KindChapter, ref, refs)
}

// ResolveTopic maps an id or name to a topic id within the chapter.
func (l *Ledger) ResolveTopic(subjectID, chapterID, ref string) (string, error) {
	_, c, err := l.lookupChapter(subjectID, chapterID)
	if err != nil {
		return "", err
	}
	refs := make([]namedRef, 0, len(c.topics))
	for _, t := range c.topics {
		refs = append(refs, namedRef{t.id, t.name})
	}
	return resolveRef(domain.KindTopic, ref, refs)
}

type namedRef struct{ id, name string }

// resolveRef prefers an exact id match, then a unique case-insensitive name.
func resolveRef(kind domain.NodeKind, ref string, refs []namedRef) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, r := range refs {
		if r.id == ref {
			return r.id, nil
		}
	}
	var matches []string
	for _, r := range refs {
		if strings.EqualFold(r.name, ref) {
			matches = append(matches, r.id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s name %q matches %d entries, use an id: %w", kind, ref, len(matches), domain.ErrValidation)
	}
}
