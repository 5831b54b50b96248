// Package stats rolls session records up into calendar buckets and derives
// the summary figures shown next to the chart. Everything here is a pure
// function of its arguments: the reference instant and location are always
// passed in, never read from a clock.
package stats

import (
	"math"
	"time"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

const (
	dailyBuckets   = 7
	weeklyBuckets  = 4
	monthlyBuckets = 6
)

var weekLabels = [weeklyBuckets]string{"3 weeks ago", "2 weeks ago", "1 week ago", "This Week"}

// Bucket is one bar of a report. Start is inclusive, End exclusive.
type Bucket struct {
	Label   string
	Start   time.Time
	End     time.Time
	Seconds int64
	Hours   float64
}

func (b Bucket) contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Compute buckets every session in st by granularity, oldest bucket first.
// Calendar boundaries are taken in loc; a nil loc means UTC.
func Compute(st domain.LedgerState, g Granularity, ref time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	buckets := frame(g, ref.In(loc), loc)
	st.EachSession(func(s domain.Session) {
		for i := range buckets {
			if buckets[i].contains(s.Timestamp) {
				buckets[i].Seconds += s.DurationSeconds
				return
			}
		}
	})
	for i := range buckets {
		buckets[i].Hours = float64(buckets[i].Seconds) / 3600
	}
	return buckets
}

// frame lays out the empty buckets ending at ref's calendar date.
func frame(g Granularity, ref time.Time, loc *time.Location) []Bucket {
	y, m, d := ref.Date()
	switch g {
	case Weekly:
		dow := int(ref.Weekday())
		out := make([]Bucket, 0, weeklyBuckets)
		for i := weeklyBuckets - 1; i >= 0; i-- {
			start := time.Date(y, m, d-(dow+7*i), 0, 0, 0, 0, loc)
			out = append(out, Bucket{
				Label: weekLabels[weeklyBuckets-1-i],
				Start: start,
				End:   start.AddDate(0, 0, 7),
			})
		}
		return out

	case Monthly:
		out := make([]Bucket, 0, monthlyBuckets)
		for i := monthlyBuckets - 1; i >= 0; i-- {
			start := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, loc)
			out = append(out, Bucket{
				Label: start.Format("Jan"),
				Start: start,
				End:   start.AddDate(0, 1, 0),
			})
		}
		return out

	default:
		out := make([]Bucket, 0, dailyBuckets)
		for i := dailyBuckets - 1; i >= 0; i-- {
			start := time.Date(y, m, d-i, 0, 0, 0, 0, loc)
			out = append(out, Bucket{
				Label: start.Format("Mon"),
				Start: start,
				End:   start.AddDate(0, 0, 1),
			})
		}
		return out
	}
}

// MaxHours returns the largest bucket value, for scaling bars.
func MaxHours(buckets []Bucket) float64 {
	var peak float64
	for _, b := range buckets {
		peak = max(peak, b.Hours)
	}
	return peak
}

type ChapterTotal struct {
	ID           string
	Name         string
	TotalSeconds int64
}

type SubjectShare struct {
	ID           string
	Name         string
	TotalSeconds int64
	Share        float64 // fraction of all study time, 0 when nothing was studied
	Chapters     []ChapterTotal
}

// Summary carries the headline figures of the stats screen.
type Summary struct {
	TotalSeconds     int64
	SubjectCount     int
	SessionCount     int
	AvgPerDaySeconds int64 // over the last 7 calendar days
	Subjects         []SubjectShare
	ExamDate         time.Time
	DaysUntilExam    int // negative once the exam has passed
}

// Summarize derives the headline figures for st as of ref.
// The per-day average always reads the daily series.
func Summarize(st domain.LedgerState, ref time.Time, loc *time.Location, examDate time.Time) Summary {
	sum := Summary{
		TotalSeconds: st.TotalTime(),
		SubjectCount: len(st.Subjects),
		SessionCount: st.SessionCount(),
		ExamDate:     examDate,
	}

	var week int64
	for _, b := range Compute(st, Daily, ref, loc) {
		week += b.Seconds
	}
	sum.AvgPerDaySeconds = week / dailyBuckets

	for _, s := range st.Subjects {
		share := SubjectShare{ID: s.ID, Name: s.Name, TotalSeconds: s.TotalTime}
		if sum.TotalSeconds > 0 {
			share.Share = float64(s.TotalTime) / float64(sum.TotalSeconds)
		}
		for _, c := range s.Chapters {
			share.Chapters = append(share.Chapters, ChapterTotal{ID: c.ID, Name: c.Name, TotalSeconds: c.TotalTime})
		}
		sum.Subjects = append(sum.Subjects, share)
	}

	if !examDate.IsZero() {
		sum.DaysUntilExam = int(math.Ceil(examDate.Sub(ref).Hours() / 24))
	}
	return sum
}
