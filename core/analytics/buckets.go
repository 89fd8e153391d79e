package analytics

import (
	"time"

	"github.com/darasahq/darasa/core/submission"
)

// DayCount is one calendar-day bucket of a time series, oldest first.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TimeSelector picks the timestamp a submission is bucketed by; ok reports
// whether the record carries one at all.
type TimeSelector func(s submission.Submission) (t time.Time, ok bool)

// ByCreation buckets submissions by their creation time.
func ByCreation(s submission.Submission) (time.Time, bool) {
	return s.CreatedAt, !s.CreatedAt.IsZero()
}

// ByEffectiveTime buckets submissions by submitted_at, falling back to created_at.
func ByEffectiveTime(s submission.Submission) (time.Time, bool) {
	t := s.EffectiveTime()
	return t, !t.IsZero()
}

// TimeBuckets counts submissions per calendar day over the trailing window
// ending at now, oldest day first. The output always has exactly `days`
// entries; days without records count 0. A record falls into a day when its
// date component equals that day in now's location, ignoring time-of-day.
// Labels are short weekday names for week-sized windows, short day-month
// otherwise.
func TimeBuckets(subs []submission.Submission, days int, now time.Time, at TimeSelector) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}

	loc := now.Location()
	buckets := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := dateOf(now.AddDate(0, 0, -i), loc)

		var count int
		for _, s := range subs {
			t, ok := at(s)
			if !ok {
				continue
			}
			if dateOf(t, loc).Equal(day) {
				count++
			}
		}
		buckets = append(buckets, DayCount{Date: dayLabel(day, days), Count: count})
	}
	return buckets
}

// LateBuckets counts late submissions per calendar day over the trailing
// window, bucketed by the day they were (effectively) submitted.
func LateBuckets(subs []submission.Submission, days int, now time.Time) []DayCount {
	late := make([]submission.Submission, 0, len(subs))
	for _, s := range subs {
		if isLate, _ := Lateness(s); isLate {
			late = append(late, s)
		}
	}
	return TimeBuckets(late, days, now, ByEffectiveTime)
}

// dateOf truncates t to its calendar date in loc.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayLabel(day time.Time, window int) string {
	if window <= 7 {
		return day.Format("Mon")
	}
	return day.Format("02 Jan")
}
