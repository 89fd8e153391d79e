package analytics

import (
	"testing"
	"time"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

var mathSubject = &course.Subject{ID: "sub-math", Name: "Math", Color: "#3B82F6"}

func mathCourse(deadline time.Time) *course.Course {
	crs := &course.Course{ID: "crs-math", Title: "Algebra II", Subject: mathSubject}
	if !deadline.IsZero() {
		crs.Deadline.SetValid(deadline)
	}
	return crs
}

func sub(status string, grade float64, crs *course.Course, createdAt time.Time) submission.Submission {
	s := submission.Submission{
		ID:        "sub",
		Status:    status,
		CreatedAt: createdAt,
		Course:    crs,
	}
	if crs != nil {
		s.CourseID = crs.ID
	}
	if status == submission.StatusGraded {
		s.Grade.SetValid(grade)
	}
	return s
}

func TestStatusDistribution(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		subs []submission.Submission
		want [3]int // pending, submitted, graded
	}{
		{name: "empty", subs: nil, want: [3]int{0, 0, 0}},
		{
			name: "example scenario",
			subs: []submission.Submission{
				sub(submission.StatusPending, 0, nil, now),
				sub(submission.StatusGraded, 14, mathCourse(time.Time{}), now),
				sub(submission.StatusGraded, 18, mathCourse(time.Time{}), now),
			},
			want: [3]int{1, 0, 2},
		},
		{
			name: "unrecognized statuses excluded",
			subs: []submission.Submission{
				sub("draft", 0, nil, now),
				sub("", 0, nil, now),
				sub(submission.StatusSubmitted, 0, nil, now),
			},
			want: [3]int{0, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := StatusDistribution(tt.subs)
			if len(dist) != 3 {
				t.Fatalf("StatusDistribution() returned %d buckets, want 3", len(dist))
			}
			recognized := 0
			for _, s := range tt.subs {
				switch s.Status {
				case submission.StatusPending, submission.StatusSubmitted, submission.StatusGraded:
					recognized++
				}
			}
			var sum int
			for i, d := range dist {
				sum += d.Count
				if d.Count != tt.want[i] {
					t.Errorf("bucket %q = %d, want %d", d.Label, d.Count, tt.want[i])
				}
			}
			if sum != recognized {
				t.Errorf("bucket sum = %d, want %d (recognized submissions)", sum, recognized)
			}
		})
	}
}

func TestTimeBucketsCompleteness(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		subs []submission.Submission
	}{
		{name: "no records", days: 7},
		{
			name: "clustered records",
			days: 7,
			subs: []submission.Submission{
				sub(submission.StatusSubmitted, 0, nil, now),
				sub(submission.StatusSubmitted, 0, nil, now.Add(-time.Hour)),
				sub(submission.StatusSubmitted, 0, nil, now.AddDate(0, 0, -3)),
				sub(submission.StatusSubmitted, 0, nil, now.AddDate(0, 0, -30)), // outside window
			},
		},
		{name: "month window", days: 30, subs: []submission.Submission{sub(submission.StatusSubmitted, 0, nil, now)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := TimeBuckets(tt.subs, tt.days, now, ByCreation)
			if len(buckets) != tt.days {
				t.Fatalf("TimeBuckets() returned %d entries, want %d", len(buckets), tt.days)
			}
		})
	}
}

func TestTimeBucketsCounts(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	subs := []submission.Submission{
		sub(submission.StatusSubmitted, 0, nil, now),                   // today
		sub(submission.StatusSubmitted, 0, nil, now.Add(-2*time.Hour)), // today, earlier
		sub(submission.StatusSubmitted, 0, nil, now.AddDate(0, 0, -6)), // oldest day in window
		sub(submission.StatusSubmitted, 0, nil, now.AddDate(0, 0, -7)), // just outside
		sub(submission.StatusSubmitted, 0, nil, time.Time{}),           // no timestamp
	}

	buckets := TimeBuckets(subs, 7, now, ByCreation)
	if len(buckets) != 7 {
		t.Fatalf("TimeBuckets() returned %d entries, want 7", len(buckets))
	}
	if buckets[0].Count != 1 {
		t.Errorf("oldest bucket = %d, want 1", buckets[0].Count)
	}
	if buckets[6].Count != 2 {
		t.Errorf("today bucket = %d, want 2", buckets[6].Count)
	}
	for i, b := range buckets[1:6] {
		if b.Count != 0 {
			t.Errorf("bucket %d = %d, want 0", i+1, b.Count)
		}
	}
	if want := now.AddDate(0, 0, -6).Format("Mon"); buckets[0].Date != want {
		t.Errorf("oldest label = %q, want %q", buckets[0].Date, want)
	}
	if want := now.Format("Mon"); buckets[6].Date != want {
		t.Errorf("today label = %q, want %q", buckets[6].Date, want)
	}
}

func TestGradeHistogramBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		grade float64
		want  string
	}{
		{name: "zero", grade: 0, want: "0-5"},
		{name: "exactly 5", grade: 5, want: "0-5"},
		{name: "just above 5", grade: 5.5, want: "6-10"},
		{name: "exactly 10", grade: 10, want: "6-10"},
		{name: "exactly 15", grade: 15, want: "11-15"},
		{name: "exactly 20", grade: 20, want: "16-20"},
		{name: "clamped below", grade: -3, want: "0-5"},
		{name: "clamped above", grade: 25, want: "16-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := GradeHistogram([]float64{tt.grade})
			for _, b := range hist {
				want := 0
				if b.Range == tt.want {
					want = 1
				}
				if b.Count != want {
					t.Errorf("bucket %q = %d, want %d", b.Range, b.Count, want)
				}
			}
		})
	}
}

func TestProgressBySubject(t *testing.T) {
	now := time.Now()
	crs := mathCourse(time.Time{})
	subs := []submission.Submission{
		sub(submission.StatusPending, 0, nil, now),
		sub(submission.StatusGraded, 14, crs, now),
		sub(submission.StatusGraded, 18, crs, now),
	}
	courses := []course.Course{*crs}

	progress := ProgressBySubject(subs, courses)
	if len(progress) != 2 {
		t.Fatalf("ProgressBySubject() returned %d subjects, want 2", len(progress))
	}

	// sorted by name: Math < Unassigned
	math := progress[0]
	if math.Name != "Math" {
		t.Fatalf("first subject = %q, want Math", math.Name)
	}
	if math.Submissions != 2 || math.Graded != 2 {
		t.Errorf("Math counts = (%d, %d), want (2, 2)", math.Submissions, math.Graded)
	}
	if math.Average != 16.0 {
		t.Errorf("Math average = %v, want 16.0", math.Average)
	}
	if math.Courses != 1 {
		t.Errorf("Math courses = %d, want 1", math.Courses)
	}

	unassigned := progress[1]
	if unassigned.Name != UnassignedSubject || unassigned.Submissions != 1 || unassigned.Graded != 0 {
		t.Errorf("Unassigned = %+v, want 1 submission, 0 graded", unassigned)
	}
	if unassigned.Average != 0 {
		t.Errorf("Unassigned average = %v, want 0 (not NaN)", unassigned.Average)
	}

	// pure function: recomputing from the same snapshot yields identical results
	again := ProgressBySubject(subs, courses)
	for i := range progress {
		if progress[i] != again[i] {
			t.Errorf("recomputation drifted: %+v != %+v", progress[i], again[i])
		}
	}
}

func TestAverageGrade(t *testing.T) {
	tests := []struct {
		name   string
		grades []float64
		want   float64
	}{
		{name: "empty", grades: nil, want: 0},
		{name: "single", grades: []float64{14}, want: 14},
		{name: "rounded to one decimal", grades: []float64{14, 15}, want: 14.5},
		{name: "thirds", grades: []float64{10, 10, 11}, want: 10.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageGrade(tt.grades); got != tt.want {
				t.Errorf("AverageGrade() = %v, want %v", got, tt.want)
			}
		})
	}
}
