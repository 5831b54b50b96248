package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consistentState() LedgerState {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return LedgerState{Subjects: []Subject{{
		ID: "s1", Name: "Math", TotalTime: 5400 + 900,
		Chapters: []Chapter{{
			ID: "c1", Name: "Algebra", TotalTime: 900 + 5400,
			Topics: []Topic{{
				ID: "t1", Name: "Groups", TotalTime: 900,
				Sessions: []Session{{Timestamp: at, DurationSeconds: 600}, {Timestamp: at, DurationSeconds: 300}},
			}},
		}},
	}}}
}

func TestCheckConsistency_CleanState(t *testing.T) {
	assert.Empty(t, CheckConsistency(consistentState()))
	assert.Empty(t, CheckConsistency(LedgerState{}))
}

func TestCheckConsistency_ManualResidualIsAllowed(t *testing.T) {
	st := consistentState()
	assert.Equal(t, int64(5400), st.Subjects[0].Chapters[0].ManualResidual())
	assert.Empty(t, CheckConsistency(st))
}

func TestCheckConsistency_ReportsBrokenRollups(t *testing.T) {
	st := consistentState()
	st.Subjects[0].TotalTime++
	st.Subjects[0].Chapters[0].Topics[0].TotalTime = 1000
	st.Subjects[0].Chapters[0].Topics[0].Sessions = append(st.Subjects[0].Chapters[0].Topics[0].Sessions, Session{})

	violations := CheckConsistency(st)
	require.Len(t, violations, 3)
	assert.Contains(t, violations[0].String(), "s1: subject total")
	assert.Contains(t, violations[1].Message, "topic total 1000")
	assert.Contains(t, violations[2].Message, "non-positive duration")
}

func TestCheckConsistency_NegativeResidualAndDuplicates(t *testing.T) {
	st := consistentState()
	st.Subjects[0].Chapters[0].TotalTime = 100
	st.Subjects[0].TotalTime = 100
	st.Subjects = append(st.Subjects, Subject{ID: "s1", Name: "Again"})

	violations := CheckConsistency(st)
	var messages []string
	for _, v := range violations {
		messages = append(messages, v.Message)
	}
	assert.Contains(t, messages, "chapter total 100 below topic sum 900")
	assert.Contains(t, messages, "duplicate subject id")
}

func TestLedgerState_TotalsAndClone(t *testing.T) {
	st := consistentState()
	assert.Equal(t, int64(6300), st.TotalTime())
	assert.Equal(t, 2, st.SessionCount())

	cp := st.Clone()
	cp.Subjects[0].Chapters[0].Topics[0].Sessions[0].DurationSeconds = 1
	cp.Subjects[0].Name = "Changed"
	assert.Equal(t, int64(600), st.Subjects[0].Chapters[0].Topics[0].Sessions[0].DurationSeconds)
	assert.Equal(t, "Math", st.Subjects[0].Name)
}

func TestParseNodeKind(t *testing.T) {
	k, err := ParseNodeKind(" Chapter ")
	require.NoError(t, err)
	assert.Equal(t, KindChapter, k)
	assert.Equal(t, 2, k.Depth())

	_, err = ParseNodeKind("session")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, NodeKind("session").Depth())
}

func TestTimerTarget_Validate(t *testing.T) {
	assert.NoError(t, TimerTarget{SubjectID: "s", ChapterID: "c", TopicID: "t"}.Validate())
	assert.ErrorIs(t, TimerTarget{SubjectID: "s", ChapterID: "c"}.Validate(), ErrValidation)
	assert.Equal(t, "s/c/t", TimerTarget{SubjectID: "s", ChapterID: "c", TopicID: "t"}.String())
}
