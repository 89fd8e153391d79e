package analytics

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

// RiskCourse is a course whose deadline is close enough to surface.
type RiskCourse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Deadline    null.Time `json:"deadline"`
	Subject     string    `json:"subject"`
	Color       string    `json:"color"`
	Submissions int       `json:"submissions"`
}

// RiskSignal is one aggregate warning counter for the risk panel.
type RiskSignal struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Tone  string `json:"tone"`
}

// Signal tones understood by the presentation layer.
const (
	ToneWarning     = "warning"
	ToneDestructive = "destructive"
	ToneAccent      = "accent"
)

// AtRiskCourses returns courses whose deadline falls strictly within
// (now, now+window], each annotated with its current submission count.
// Courses without a deadline are never at risk; a course with zero
// submissions is still included.
func AtRiskCourses(courses []course.Course, now time.Time, window time.Duration, subsByCourse map[string]int) []RiskCourse {
	risk := make([]RiskCourse, 0)
	for _, c := range courses {
		if !c.Deadline.Valid {
			continue
		}
		d := c.Deadline.Time
		if !d.After(now) || d.After(now.Add(window)) {
			continue
		}

		rc := RiskCourse{
			ID:          c.ID,
			Title:       c.Title,
			Deadline:    c.Deadline,
			Submissions: subsByCourse[c.ID],
		}
		if c.Subject != nil {
			rc.Subject = c.Subject.Name
			rc.Color = c.Subject.Color
		}
		risk = append(risk, rc)
	}
	return risk
}

// Lateness reports whether a submission landed after its course deadline and,
// if so, by how many whole calendar days (floored at 1, so a submission one
// minute late still reads "+1 day"). Submissions on courses without a
// deadline are never late. Lateness is independent of grading state.
func Lateness(s submission.Submission) (late bool, daysLate int) {
	deadline, ok := s.Deadline()
	if !ok {
		return false, 0
	}
	at := s.EffectiveTime()
	if !at.After(deadline) {
		return false, 0
	}

	days := calendarDaysBetween(deadline, at)
	if days < 1 {
		days = 1
	}
	return true, days
}

// RiskSignals derives the aggregate warning counters: submissions that are
// late and still ungraded, ungraded submissions due within the next week,
// and submissions never handed in.
func RiskSignals(subs []submission.Submission, now time.Time) []RiskSignal {
	const dueSoonWindow = 7 * 24 * time.Hour

	var late, dueSoon, notSubmitted int
	for _, s := range subs {
		if s.Status == submission.StatusPending {
			notSubmitted++
		}
		if s.Status == submission.StatusGraded {
			continue
		}
		if isLate, _ := Lateness(s); isLate {
			late++
		}
		if deadline, ok := s.Deadline(); ok {
			if deadline.After(now) && !deadline.After(now.Add(dueSoonWindow)) {
				dueSoon++
			}
		}
	}

	return []RiskSignal{
		{Label: "Late", Value: late, Tone: ToneDestructive},
		{Label: "Due within 7 days", Value: dueSoon, Tone: ToneWarning},
		{Label: "Not submitted", Value: notSubmitted, Tone: ToneAccent},
	}
}

// calendarDaysBetween counts whole calendar days from a to b, comparing date
// components in b's location (a minute past midnight is one day).
func calendarDaysBetween(a, b time.Time) int {
	loc := b.Location()
	return int(dateOf(b, loc).Sub(dateOf(a, loc)).Hours() / 24)
}
