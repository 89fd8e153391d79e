package analytics

import (
	"testing"
	"time"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

func courseWithDeadline(id string, deadline time.Time) course.Course {
	crs := course.Course{ID: id, Title: "Course " + id, Subject: mathSubject}
	if !deadline.IsZero() {
		crs.Deadline.SetValid(deadline)
	}
	return crs
}

func TestAtRiskCoursesBoundary(t *testing.T) {
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	window := 3 * 24 * time.Hour

	tests := []struct {
		name     string
		deadline time.Time
		want     bool
	}{
		{name: "no deadline", deadline: time.Time{}, want: false},
		{name: "deadline is now", deadline: now, want: false},
		{name: "deadline in the past", deadline: now.Add(-time.Hour), want: false},
		{name: "deadline in one hour", deadline: now.Add(time.Hour), want: true},
		{name: "deadline exactly at window edge", deadline: now.Add(window), want: true},
		{name: "deadline one second past window", deadline: now.Add(window + time.Second), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses := []course.Course{courseWithDeadline("c1", tt.deadline)}
			risk := AtRiskCourses(courses, now, window, nil)
			if got := len(risk) == 1; got != tt.want {
				t.Errorf("at risk = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("zero submissions still included", func(t *testing.T) {
		courses := []course.Course{courseWithDeadline("c1", now.Add(time.Hour))}
		risk := AtRiskCourses(courses, now, window, map[string]int{})
		if len(risk) != 1 {
			t.Fatalf("len = %d, want 1", len(risk))
		}
		if risk[0].Submissions != 0 {
			t.Errorf("submissions = %d, want 0", risk[0].Submissions)
		}
		if risk[0].Subject != "Math" || risk[0].Color == "" {
			t.Errorf("subject annotation missing: %+v", risk[0])
		}
	})

	t.Run("submission counts annotated", func(t *testing.T) {
		courses := []course.Course{courseWithDeadline("c1", now.Add(time.Hour))}
		risk := AtRiskCourses(courses, now, window, map[string]int{"c1": 4})
		if risk[0].Submissions != 4 {
			t.Errorf("submissions = %d, want 4", risk[0].Submissions)
		}
	})
}

func TestLateness(t *testing.T) {
	deadline := time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC)

	mkSub := func(deadline, submittedAt, createdAt time.Time) submission.Submission {
		crs := &course.Course{ID: "c1", Title: "Course"}
		if !deadline.IsZero() {
			crs.Deadline.SetValid(deadline)
		}
		s := submission.Submission{CourseID: "c1", Course: crs, CreatedAt: createdAt}
		if !submittedAt.IsZero() {
			s.SubmittedAt.SetValid(submittedAt)
		}
		return s
	}

	tests := []struct {
		name     string
		sub      submission.Submission
		wantLate bool
		wantDays int
	}{
		{
			name:     "no deadline never late",
			sub:      mkSub(time.Time{}, deadline.Add(48*time.Hour), deadline),
			wantLate: false,
		},
		{
			name:     "on time",
			sub:      mkSub(deadline, deadline.Add(-time.Hour), deadline.Add(-2*time.Hour)),
			wantLate: false,
		},
		{
			name:     "exactly at deadline",
			sub:      mkSub(deadline, deadline, deadline.Add(-time.Hour)),
			wantLate: false,
		},
		{
			name:     "one minute late floors to one day",
			sub:      mkSub(deadline, deadline.Add(time.Minute), deadline),
			wantLate: true,
			wantDays: 1,
		},
		{
			name:     "two calendar days late",
			sub:      mkSub(deadline, deadline.Add(48*time.Hour), deadline),
			wantLate: true,
			wantDays: 2,
		},
		{
			name:     "falls back to created_at",
			sub:      mkSub(deadline, time.Time{}, deadline.Add(25*time.Hour)),
			wantLate: true,
			wantDays: 1,
		},
		{
			name: "graded submissions can still be late",
			sub: func() submission.Submission {
				s := mkSub(deadline, deadline.Add(time.Minute), deadline)
				s.Status = submission.StatusGraded
				s.Grade.SetValid(12)
				return s
			}(),
			wantLate: true,
			wantDays: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			late, days := Lateness(tt.sub)
			if late != tt.wantLate {
				t.Errorf("late = %v, want %v", late, tt.wantLate)
			}
			if late && days != tt.wantDays {
				t.Errorf("daysLate = %d, want %d", days, tt.wantDays)
			}
		})
	}
}

func TestRiskSignals(t *testing.T) {
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	pastDeadline := now.Add(-48 * time.Hour)
	soonDeadline := now.Add(24 * time.Hour)

	mk := func(status string, deadline time.Time, at time.Time) submission.Submission {
		crs := &course.Course{ID: "c"}
		if !deadline.IsZero() {
			crs.Deadline.SetValid(deadline)
		}
		s := submission.Submission{CourseID: "c", Course: crs, Status: status, CreatedAt: at}
		return s
	}

	subs := []submission.Submission{
		mk(submission.StatusSubmitted, pastDeadline, now),          // late, not graded
		mk(submission.StatusGraded, pastDeadline, now),             // late but graded: not counted
		mk(submission.StatusPending, soonDeadline, now.Add(-time.Hour)), // due soon + pending
		mk(submission.StatusPending, time.Time{}, now),             // pending, no deadline
	}

	signals := RiskSignals(subs, now)
	if len(signals) != 3 {
		t.Fatalf("len = %d, want 3", len(signals))
	}
	want := map[string]int{"Late": 1, "Due within 7 days": 1, "Not submitted": 2}
	for _, sig := range signals {
		if sig.Value != want[sig.Label] {
			t.Errorf("%s = %d, want %d", sig.Label, sig.Value, want[sig.Label])
		}
	}
}

func TestLateBuckets(t *testing.T) {
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, -10)

	crs := &course.Course{ID: "c"}
	crs.Deadline.SetValid(deadline)

	lateSub := submission.Submission{CourseID: "c", Course: crs, CreatedAt: deadline}
	lateSub.SubmittedAt.SetValid(deadline.Add(26 * time.Hour)) // 9 days ago

	onTime := submission.Submission{CourseID: "c", Course: crs, CreatedAt: deadline.Add(-time.Hour)}
	onTime.SubmittedAt.SetValid(deadline.Add(-time.Hour))

	buckets := LateBuckets([]submission.Submission{lateSub, onTime}, 30, now)
	if len(buckets) != 30 {
		t.Fatalf("len = %d, want 30", len(buckets))
	}
	var total int
	for _, b := range buckets {
		total += b.Count
	}
	if total != 1 {
		t.Errorf("total late = %d, want 1 (on-time submissions excluded)", total)
	}
}

func TestBuildReportDeterminism(t *testing.T) {
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	crs := courseWithDeadline("c1", now.Add(24*time.Hour))
	snap := Snapshot{
		Students:   12,
		Professors: 2,
		Courses:    []course.Course{crs},
		Submissions: []submission.Submission{
			sub(submission.StatusGraded, 14, &crs, now.Add(-time.Hour)),
			sub(submission.StatusPending, 0, &crs, now.Add(-26*time.Hour)),
		},
		Grades: []float64{14},
	}

	r1 := BuildReport(snap, now)
	r2 := BuildReport(snap, now)

	if r1.TotalSubmissions != 2 || r1.TotalCourses != 1 || r1.AverageGrade != 14 {
		t.Errorf("totals = %+v", r1)
	}
	if len(r1.SubmissionsOverTime) != WeekWindow || len(r1.LateOverTime) != MonthWindow {
		t.Errorf("window sizes = (%d, %d)", len(r1.SubmissionsOverTime), len(r1.LateOverTime))
	}
	if len(r1.RiskCourses) != 1 {
		t.Errorf("risk courses = %d, want 1", len(r1.RiskCourses))
	}
	if len(r1.ProgressBySubject) != len(r2.ProgressBySubject) {
		t.Fatalf("progress length drifted")
	}
	for i := range r1.ProgressBySubject {
		if r1.ProgressBySubject[i] != r2.ProgressBySubject[i] {
			t.Errorf("progress drifted at %d", i)
		}
	}
}
