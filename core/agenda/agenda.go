// Package agenda turns course deadlines and submission activity into calendar
// events for the agenda page and deadline reminders. Like the analytics
// package it is pure: the caller supplies the clock.
package agenda

import (
	"sort"
	"time"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

// Event kinds
const (
	KindDeadline   = "deadline"
	KindGrading    = "grading"
	KindSubmission = "submission"
)

const (
	// UpcomingWindow bounds the "next up" sidebar.
	UpcomingWindow = 30 * 24 * time.Hour
	// UpcomingLimit caps how many events the sidebar shows.
	UpcomingLimit = 8
	// ReminderWindow is how close a deadline must be to trigger a reminder.
	ReminderWindow = 48 * time.Hour
)

type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Kind     string    `json:"kind"`
	Date     time.Time `json:"date"`
	CourseID string    `json:"course_id,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Color    string    `json:"color,omitempty"`
}

// CourseEvents maps course deadlines to events; courses without one yield none.
func CourseEvents(courses []course.Course) []Event {
	events := make([]Event, 0, len(courses))
	for _, c := range courses {
		if !c.Deadline.Valid {
			continue
		}
		ev := Event{
			ID:       "course:" + c.ID,
			Title:    c.Title,
			Kind:     KindDeadline,
			Date:     c.Deadline.Time,
			CourseID: c.ID,
		}
		if c.Subject != nil {
			ev.Subject = c.Subject.Name
			ev.Color = c.Subject.Color
		}
		events = append(events, ev)
	}
	return events
}

// GradingEvents maps a professor's ungraded submissions to grading tasks,
// dated by when the work arrived.
func GradingEvents(subs []submission.Submission) []Event {
	events := make([]Event, 0, len(subs))
	for _, s := range subs {
		if s.Status != submission.StatusSubmitted {
			continue
		}
		title := "Grade submission"
		if s.Course != nil {
			title = "Grade: " + s.Course.Title
		}
		ev := Event{
			ID:       "grading:" + s.ID,
			Title:    title,
			Kind:     KindGrading,
			Date:     s.EffectiveTime(),
			CourseID: s.CourseID,
		}
		if name, ok := s.SubjectName(); ok {
			ev.Subject = name
			ev.Color = s.Course.Subject.Color
		}
		events = append(events, ev)
	}
	return events
}

// SubmissionEvents maps a student's own submissions to events.
func SubmissionEvents(subs []submission.Submission) []Event {
	events := make([]Event, 0, len(subs))
	for _, s := range subs {
		title := "Submission"
		if s.Course != nil {
			title = s.Course.Title
		}
		events = append(events, Event{
			ID:       "submission:" + s.ID,
			Title:    title,
			Kind:     KindSubmission,
			Date:     s.EffectiveTime(),
			CourseID: s.CourseID,
		})
	}
	return events
}

// Upcoming filters events to (now, now+window], sorted soonest first and
// capped at limit.
func Upcoming(events []Event, now time.Time, window time.Duration, limit int) []Event {
	edge := now.Add(window)
	up := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Date.After(now) && !ev.Date.After(edge) {
			up = append(up, ev)
		}
	}
	sort.Slice(up, func(i, j int) bool { return up[i].Date.Before(up[j].Date) })
	if limit > 0 && len(up) > limit {
		up = up[:limit]
	}
	return up
}

// DueSoon returns events within the reminder window, soonest first.
func DueSoon(events []Event, now time.Time) []Event {
	return Upcoming(events, now, ReminderWindow, 0)
}
