package analytics

import (
	"time"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

// Default windows used by the analytics page.
const (
	WeekWindow       = 7
	MonthWindow      = 30
	RiskWindow       = 3 * 24 * time.Hour
	TopProgressCount = 3
)

// Snapshot is the set of records fetched at one point in time, treated as
// immutable input. The fetch layer joins its concurrent queries before a
// snapshot is built, so aggregation never sees a partial one.
type Snapshot struct {
	Students    int
	Professors  int
	Courses     []course.Course
	Submissions []submission.Submission
	Grades      []float64
}

// Report is the full analytics payload consumed by the analytics page.
type Report struct {
	TotalStudents    int     `json:"total_students"`
	TotalProfessors  int     `json:"total_professors"`
	TotalCourses     int     `json:"total_courses"`
	TotalSubmissions int     `json:"total_submissions"`
	AverageGrade     float64 `json:"average_grade"`

	SubmissionsByStatus []StatusCount     `json:"submissions_by_status"`
	SubmissionsOverTime []DayCount        `json:"submissions_over_time"`
	GradeDistribution   []RangeCount      `json:"grade_distribution"`
	ProgressBySubject   []SubjectProgress `json:"progress_by_subject"`
	LateOverTime        []DayCount        `json:"late_over_time"`
	RiskCourses         []RiskCourse      `json:"risk_courses"`
	RiskSignals         []RiskSignal      `json:"risk_signals"`
	TopProgress         []SubjectProgress `json:"top_progress"`
}

// BuildReport runs the full aggregation pipeline over one snapshot.
// Deterministic for a given (snapshot, now) pair.
func BuildReport(snap Snapshot, now time.Time) Report {
	progress := ProgressBySubject(snap.Submissions, snap.Courses)

	return Report{
		TotalStudents:    snap.Students,
		TotalProfessors:  snap.Professors,
		TotalCourses:     len(snap.Courses),
		TotalSubmissions: len(snap.Submissions),
		AverageGrade:     AverageGrade(snap.Grades),

		SubmissionsByStatus: StatusDistribution(snap.Submissions),
		SubmissionsOverTime: TimeBuckets(snap.Submissions, WeekWindow, now, ByCreation),
		GradeDistribution:   GradeHistogram(snap.Grades),
		ProgressBySubject:   progress,
		LateOverTime:        LateBuckets(snap.Submissions, MonthWindow, now),
		RiskCourses:         AtRiskCourses(snap.Courses, now, RiskWindow, SubmissionCountByCourse(snap.Submissions)),
		RiskSignals:         RiskSignals(snap.Submissions, now),
		TopProgress:         TopProgress(progress, TopProgressCount),
	}
}
