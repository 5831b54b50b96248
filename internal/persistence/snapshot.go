package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// Snapshot is everything that survives a restart: the study tree and the
// running timer, if any.
type Snapshot struct {
	State  domain.LedgerState
	Active *domain.ActiveTimer
}

// Empty reports whether the snapshot holds neither subjects nor a timer.
func (s Snapshot) Empty() bool {
	return len(s.State.Subjects) == 0 && s.Active == nil
}

// flexID is a string id that also decodes from a JSON number. Older blobs
// used millisecond timestamps as ids.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

type sessionJSON struct {
	Date     time.Time `json:"date"`
	Duration int64     `json:"duration"`
}

type topicJSON struct {
	ID        flexID        `json:"id"`
	Name      string        `json:"name"`
	TotalTime int64         `json:"totalTime"`
	Sessions  []sessionJSON `json:"sessions"`
}

type chapterJSON struct {
	ID        flexID      `json:"id"`
	Name      string      `json:"name"`
	Topics    []topicJSON `json:"topics"`
	TotalTime int64       `json:"totalTime"`
}

type subjectJSON struct {
	ID        flexID        `json:"id"`
	Name      string        `json:"name"`
	Chapters  []chapterJSON `json:"chapters"`
	TotalTime int64         `json:"totalTime"`
}

type activeTimerJSON struct {
	SubjectID flexID `json:"subjectId"`
	ChapterID flexID `json:"chapterId"`
	TopicID   flexID `json:"topicId"`
}

type payloadJSON struct {
	Subjects     []subjectJSON    `json:"subjects"`
	ActiveTimer  *activeTimerJSON `json:"activeTimer"`
	TimerSeconds int64            `json:"timerSeconds"`
}

// Encode renders the snapshot as the stored JSON payload.
func Encode(s Snapshot) (string, error) {
	p := payloadJSON{Subjects: make([]subjectJSON, 0, len(s.State.Subjects))}
	for _, sub := range s.State.Subjects {
		sj := subjectJSON{ID: flexID(sub.ID), Name: sub.Name, TotalTime: sub.TotalTime, Chapters: make([]chapterJSON, 0, len(sub.Chapters))}
		for _, ch := range sub.Chapters {
			cj := chapterJSON{ID: flexID(ch.ID), Name: ch.Name, TotalTime: ch.TotalTime, Topics: make([]topicJSON, 0, len(ch.Topics))}
			for _, tp := range ch.Topics {
				tj := topicJSON{ID: flexID(tp.ID), Name: tp.Name, TotalTime: tp.TotalTime, Sessions: make([]sessionJSON, 0, len(tp.Sessions))}
				for _, sess := range tp.Sessions {
					tj.Sessions = append(tj.Sessions, sessionJSON{Date: sess.Timestamp.UTC(), Duration: sess.DurationSeconds})
				}
				cj.Topics = append(cj.Topics, tj)
			}
			sj.Chapters = append(sj.Chapters, cj)
		}
		p.Subjects = append(p.Subjects, sj)
	}
	if s.Active != nil {
		t := s.Active.Target
		p.ActiveTimer = &activeTimerJSON{SubjectID: flexID(t.SubjectID), ChapterID: flexID(t.ChapterID), TopicID: flexID(t.TopicID)}
		p.TimerSeconds = s.Active.ElapsedSeconds
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored payload. Missing collections decode as empty.
func Decode(value string) (Snapshot, error) {
	var p payloadJSON
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	var out Snapshot
	out.State.Subjects = make([]domain.Subject, 0, len(p.Subjects))
	for _, sj := range p.Subjects {
		sub := domain.Subject{ID: string(sj.ID), Name: sj.Name, TotalTime: sj.TotalTime, Chapters: make([]domain.Chapter, 0, len(sj.Chapters))}
		for _, cj := range sj.Chapters {
			ch := domain.Chapter{ID: string(cj.ID), Name: cj.Name, TotalTime: cj.TotalTime, Topics: make([]domain.Topic, 0, len(cj.Topics))}
			for _, tj := range cj.Topics {
				tp := domain.Topic{ID: string(tj.ID), Name: tj.Name, TotalTime: tj.TotalTime}
				for _, s := range tj.Sessions {
					tp.Sessions = append(tp.Sessions, domain.Session{Timestamp: s.Date, DurationSeconds: s.Duration})
				}
				ch.Topics = append(ch.Topics, tp)
			}
			sub.Chapters = append(sub.Chapters, ch)
		}
		out.State.Subjects = append(out.State.Subjects, sub)
	}
	if p.ActiveTimer != nil {
		out.Active = &domain.ActiveTimer{
			Target: domain.TimerTarget{
				SubjectID: string(p.ActiveTimer.SubjectID),
				ChapterID: string(p.ActiveTimer.ChapterID),
				TopicID:   string(p.ActiveTimer.TopicID),
			},
			ElapsedSeconds: max(p.TimerSeconds, 0),
		}
	}
	return out, nil
}
