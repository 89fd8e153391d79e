package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
)

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

// submissionRow carries the submission joined with its course, the course's
// subject and the student's name, so aggregation downstream never re-queries.
type submissionRow struct {
	ID          string       `db:"id"`
	CourseID    string       `db:"course_id"`
	StudentID   string       `db:"student_id"`
	StudentName string       `db:"student_name"`
	Status      string       `db:"status"`
	Grade       null.Float64 `db:"grade"`
	Comment     null.String  `db:"comment"`
	FileURL     null.String  `db:"file_url"`
	CreatedAt   time.Time    `db:"created_at"`
	SubmittedAt null.Time    `db:"submitted_at"`
	GradedAt    null.Time    `db:"graded_at"`

	CourseTitle       string      `db:"course_title"`
	CourseDescription null.String `db:"course_description"`
	CourseProfessorID string      `db:"course_professor_id"`
	CourseDeadline    null.Time   `db:"course_deadline"`
	CourseCreatedAt   time.Time   `db:"course_created_at"`
	CourseUpdatedAt   time.Time   `db:"course_updated_at"`
	SubjectID         null.String `db:"subject_id"`
	SubjectName       null.String `db:"subject_name"`
	SubjectColor      null.String `db:"subject_color"`
}

func (r submissionRow) unpack() submission.Submission {
	crs := &course.Course{
		ID:          r.CourseID,
		Title:       r.CourseTitle,
		Description: r.CourseDescription,
		ProfessorID: r.CourseProfessorID,
		Deadline:    r.CourseDeadline,
		CreatedAt:   r.CourseCreatedAt,
		UpdatedAt:   r.CourseUpdatedAt,
	}
	if r.SubjectID.Valid {
		crs.Subject = &course.Subject{
			ID:    r.SubjectID.String,
			Name:  r.SubjectName.String,
			Color: r.SubjectColor.String,
		}
	}
	return submission.Submission{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Course:      crs,
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		Status:      r.Status,
		Grade:       r.Grade,
		Comment:     r.Comment,
		FileURL:     r.FileURL,
		CreatedAt:   r.CreatedAt,
		SubmittedAt: r.SubmittedAt,
		GradedAt:    r.GradedAt,
	}
}

const selectSubmission = `
SELECT sub.id, sub.course_id, sub.student_id, u.full_name AS student_name, sub.status,
       sub.grade, sub.comment, sub.file_url, sub.created_at, sub.submitted_at, sub.graded_at,
       c.title AS course_title, c.description AS course_description, c.professor_id AS course_professor_id,
       c.deadline AS course_deadline, c.created_at AS course_created_at, c.updated_at AS course_updated_at,
       s.id AS subject_id, s.name AS subject_name, s.color AS subject_color
FROM submission sub
JOIN course c ON c.id = sub.course_id
JOIN "user" u ON u.id = sub.student_id
LEFT JOIN subject s ON s.id = c.subject_id`

// allowed API ordering fields -> columns
var submissionOrderFields = map[string]string{
	"created_at":   "sub.created_at",
	"submitted_at": "sub.submitted_at",
	"grade":        "sub.grade",
	"status":       "sub.status",
}

// filterConds renders QueryFilter into WHERE conditions with "?" bindvars.
func filterConds(filter submission.QueryFilter) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if len(filter.StudentIDs) > 0 {
		conds = append(conds, `sub.student_id IN (?)`)
		args = append(args, filter.StudentIDs)
	}
	if filter.ProfessorID != "" {
		conds = append(conds, `c.professor_id = ?`)
		args = append(args, filter.ProfessorID)
	}
	if filter.Status != "" {
		conds = append(conds, `sub.status = ?`)
		args = append(args, filter.Status)
	}
	if filter.SubjectName != "" {
		conds = append(conds, `s.name = ?`)
		args = append(args, filter.SubjectName)
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, `(c.title ILIKE ? OR u.full_name ILIKE ?)`)
		args = append(args, val, val)
	}
	if filter.GradedOnly {
		conds = append(conds, `sub.grade IS NOT NULL`)
	}
	return conds, args
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	sub.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO submission (id, course_id, student_id, status, grade, comment, file_url, created_at, submitted_at, graded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sub.ID, sub.CourseID, sub.StudentID, sub.Status, sub.Grade, sub.Comment, sub.FileURL,
		sub.CreatedAt, sub.SubmittedAt, sub.GradedAt,
	)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return repo.GetSubmissionByID(ctx, sub.ID)
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return submission.Submission{}, submission.ErrNotFound
	}
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, selectSubmission+` WHERE sub.id = $1`, id); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, submission.ErrNotFound, "finding submission by ID")
	}
	return row.unpack(), nil
}

func (repo *submissionRepository) FilterSubmissions(ctx context.Context, filter submission.QueryFilter, ordering []core.DBOrdering) ([]submission.Submission, error) {
	conds, args := filterConds(filter)

	query := selectSubmission
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY ` + core.OrderClause(ordering, submissionOrderFields, "sub.created_at DESC")

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding submissions query")
	}

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.unpack())
	}
	return subs, nil
}

func (repo *submissionRepository) QueryGrades(ctx context.Context, filter submission.QueryFilter) ([]float64, error) {
	conds, args := filterConds(filter)
	conds = append(conds, `sub.grade IS NOT NULL`)

	query := `SELECT sub.grade FROM submission sub
JOIN course c ON c.id = sub.course_id
JOIN "user" u ON u.id = sub.student_id
LEFT JOIN subject s ON s.id = c.subject_id
WHERE ` + strings.Join(conds, ` AND `)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding grades query")
	}

	grades := make([]float64, 0)
	if err := repo.db.SelectContext(ctx, &grades, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return grades, nil
}

func (repo *submissionRepository) CountSubmissionsByStatus(ctx context.Context, status string, filter submission.QueryFilter) (int, error) {
	filter.Status = status
	conds, args := filterConds(filter)

	query := `SELECT COUNT(*) FROM submission sub
JOIN course c ON c.id = sub.course_id
JOIN "user" u ON u.id = sub.student_id
LEFT JOIN subject s ON s.id = c.subject_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "expanding count query")
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return count, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE submission SET status = $2, grade = $3, comment = $4, file_url = $5, submitted_at = $6, graded_at = $7 WHERE id = $1`,
		sub.ID, sub.Status, sub.Grade, sub.Comment, sub.FileURL, sub.SubmittedAt, sub.GradedAt,
	)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.GetSubmissionByID(ctx, sub.ID)
}
