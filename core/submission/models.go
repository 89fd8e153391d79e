package submission

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/course"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

var Statuses = []string{StatusPending, StatusSubmitted, StatusGraded}

// Submission is a student's answer to a course assignment. The Course
// reference (and through it the Subject) is resolved at fetch time so
// downstream aggregation never re-queries.
type Submission struct {
	ID          string         `json:"id"`
	CourseID    string         `json:"course_id"`
	Course      *course.Course `json:"course"`
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name,omitempty"`
	Status      string         `json:"status"`
	Grade       null.Float64   `json:"grade"`
	Comment     null.String    `json:"comment"`
	FileURL     null.String    `json:"file_url"`
	CreatedAt   time.Time      `json:"created_at"`
	SubmittedAt null.Time      `json:"submitted_at"`
	GradedAt    null.Time      `json:"graded_at"`
}

// EffectiveTime is the timestamp lateness is judged against:
// submitted_at when present, created_at otherwise.
func (s Submission) EffectiveTime() time.Time {
	if s.SubmittedAt.Valid {
		return s.SubmittedAt.Time
	}
	return s.CreatedAt
}

// Deadline returns the course deadline, if any.
func (s Submission) Deadline() (time.Time, bool) {
	if s.Course == nil || !s.Course.Deadline.Valid {
		return time.Time{}, false
	}
	return s.Course.Deadline.Time, true
}

// SubjectName returns the resolved subject display name, if any.
func (s Submission) SubjectName() (string, bool) {
	if s.Course == nil || s.Course.Subject == nil {
		return "", false
	}
	return s.Course.Subject.Name, true
}

// NewSubmission contains information needed to create a new Submission.
type NewSubmission struct {
	CourseID string `json:"course_id" validate:"required"`
	FileURL  string `json:"file_url"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.CourseID = core.CleanString(ns.CourseID)
	return validate.Struct(ns)
}

// GradeSubmission carries a professor's grading of a submission.
type GradeSubmission struct {
	Grade   float64 `json:"grade" validate:"min=0,max=20"`
	Comment string  `json:"comment"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Comment = core.CleanString(gs.Comment)
	return validate.Struct(gs)
}

// QueryFilter applies AND on available fields. Either StudentIDs or
// ProfessorID scopes the result set; Search matches course title or
// student name case-insensitively.
type QueryFilter struct {
	StudentIDs  []string
	ProfessorID string
	Status      string `query:"status"`
	SubjectName string `query:"subject"`
	Search      string `query:"search"`
	GradedOnly  bool   `query:"graded_only"`
}

func (f *QueryFilter) Clean() {
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.SubjectName = core.CleanString(f.SubjectName)
	f.Search = core.CleanString(f.Search, true /* lower */)
}
