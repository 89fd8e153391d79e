package analytics

import (
	"sort"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

// Placeholder bucket for records with no resolved subject.
const (
	UnassignedSubject = "Unassigned"
	unassignedColor   = "#6B7280"
)

// SubjectProgress summarizes activity for one subject display name.
type SubjectProgress struct {
	Name        string  `json:"name"`
	Submissions int     `json:"submissions"`
	Graded      int     `json:"graded"`
	Average     float64 `json:"average"`
	Courses     int     `json:"courses"`
	Color       string  `json:"color"`
}

// ProgressBySubject groups courses and submissions by subject display name:
// course count, submission count, graded count and average grade over graded
// items only (one decimal; 0 when nothing is graded yet). Two subjects
// sharing a name are merged; grouping is by name, not identifier. Output is
// sorted by name for deterministic rendering.
func ProgressBySubject(subs []submission.Submission, courses []course.Course) []SubjectProgress {
	type entry struct {
		submissions int
		graded      int
		totalGrade  float64
		courses     int
		color       string
	}
	bySubject := make(map[string]*entry)

	get := func(name, color string) *entry {
		e, ok := bySubject[name]
		if !ok {
			e = &entry{color: color}
			bySubject[name] = e
		}
		return e
	}

	for _, c := range courses {
		name, color := UnassignedSubject, unassignedColor
		if c.Subject != nil {
			name, color = c.Subject.Name, c.Subject.Color
		}
		get(name, color).courses++
	}

	for _, s := range subs {
		name, color := UnassignedSubject, unassignedColor
		if sn, ok := s.SubjectName(); ok {
			name, color = sn, s.Course.Subject.Color
		}
		e := get(name, color)
		e.submissions++
		if s.Status == submission.StatusGraded && s.Grade.Valid {
			e.graded++
			e.totalGrade += s.Grade.Float64
		}
	}

	progress := make([]SubjectProgress, 0, len(bySubject))
	for name, e := range bySubject {
		var avg float64
		if e.graded > 0 {
			avg = core.Round1(e.totalGrade / float64(e.graded))
		}
		progress = append(progress, SubjectProgress{
			Name:        name,
			Submissions: e.submissions,
			Graded:      e.graded,
			Average:     avg,
			Courses:     e.courses,
			Color:       e.color,
		})
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].Name < progress[j].Name })
	return progress
}

// TopProgress returns the n subjects with the highest average, best first.
func TopProgress(progress []SubjectProgress, n int) []SubjectProgress {
	top := make([]SubjectProgress, len(progress))
	copy(top, progress)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Average > top[j].Average })
	if len(top) > n {
		top = top[:n]
	}
	return top
}
