// Package analytics derives the summary structures behind the dashboard and
// analytics widgets from point-in-time snapshots of courses, submissions and
// grades. Every function is pure: inputs are never mutated, the ambient clock
// is always an explicit argument, and malformed or missing optional fields
// degrade to zero contributions instead of errors. Dashboards prefer a chart
// with a hole in it over no chart at all; strict validation belongs to the
// write path.
package analytics

import (
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/submission"
)

// StatusCount is one slice of the submission status donut.
type StatusCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Fixed display order and colors; the presentation layer relies on both.
var statusDisplay = []struct {
	status, label, color string
}{
	{submission.StatusPending, "Pending", "#F59E0B"},
	{submission.StatusSubmitted, "Submitted", "#3B82F6"},
	{submission.StatusGraded, "Graded", "#10B981"},
}

// StatusDistribution counts submissions per status in a fixed display order.
// Unrecognized statuses fall into no bucket.
func StatusDistribution(subs []submission.Submission) []StatusCount {
	counts := make(map[string]int, len(statusDisplay))
	for _, s := range subs {
		counts[s.Status]++
	}

	dist := make([]StatusCount, 0, len(statusDisplay))
	for _, d := range statusDisplay {
		dist = append(dist, StatusCount{Label: d.label, Count: counts[d.status], Color: d.color})
	}
	return dist
}

// AverageGrade averages grades to one decimal; 0 for an empty input.
func AverageGrade(grades []float64) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	return core.Round1(sum / float64(len(grades)))
}

// SubmissionCountByCourse folds submissions into a per-course count, keyed by
// course ID. Submissions without a course reference are skipped.
func SubmissionCountByCourse(subs []submission.Submission) map[string]int {
	counts := make(map[string]int)
	for _, s := range subs {
		id := s.CourseID
		if id == "" && s.Course != nil {
			id = s.Course.ID
		}
		if id == "" {
			continue
		}
		counts[id]++
	}
	return counts
}
