package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

// courseRow carries the course joined with its (optional) subject.
type courseRow struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Description  null.String `db:"description"`
	ProfessorID  string      `db:"professor_id"`
	Deadline     null.Time   `db:"deadline"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	SubjectID    null.String `db:"subject_id"`
	SubjectName  null.String `db:"subject_name"`
	SubjectColor null.String `db:"subject_color"`
}

func (r courseRow) unpack() course.Course {
	crs := course.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ProfessorID: r.ProfessorID,
		Deadline:    r.Deadline,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.SubjectID.Valid {
		crs.Subject = &course.Subject{
			ID:    r.SubjectID.String,
			Name:  r.SubjectName.String,
			Color: r.SubjectColor.String,
		}
	}
	return crs
}

func unpackCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.unpack())
	}
	return courses
}

const selectCourse = `
SELECT c.id, c.title, c.description, c.professor_id, c.deadline, c.created_at, c.updated_at,
       s.id AS subject_id, s.name AS subject_name, s.color AS subject_color
FROM course c
LEFT JOIN subject s ON s.id = c.subject_id`

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	var subjectID null.String
	if crs.Subject != nil {
		subjectID.SetValid(crs.Subject.ID)
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, title, description, professor_id, subject_id, deadline, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		crs.ID, crs.Title, crs.Description, crs.ProfessorID, subjectID, crs.Deadline,
		crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, selectCourse+` WHERE c.id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return row.unpack(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, professorID string) ([]course.Course, error) {
	query := selectCourse
	var args []interface{}
	if professorID != "" {
		query += ` WHERE c.professor_id = $1`
		args = append(args, professorID)
	}
	query += ` ORDER BY c.created_at DESC`

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return unpackCourses(rows), nil
}

func (repo *courseRepository) RecentCourses(ctx context.Context, professorID string, limit int) ([]course.Course, error) {
	query := selectCourse
	args := []interface{}{limit}
	if professorID != "" {
		query += ` WHERE c.professor_id = $2`
		args = append(args, professorID)
	}
	query += ` ORDER BY c.created_at DESC LIMIT $1`

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying recent courses")
	}
	return unpackCourses(rows), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	var subjectID null.String
	if crs.Subject != nil {
		subjectID.SetValid(crs.Subject.ID)
	}
	res, err := repo.db.ExecContext(ctx,
		`UPDATE course SET title = $2, description = $3, subject_id = $4, deadline = $5, updated_at = $6 WHERE id = $1`,
		crs.ID, crs.Title, crs.Description, subjectID, crs.Deadline, crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	return errors.Wrap(err, "deleting course")
}

func (repo *courseRepository) QuerySubjects(ctx context.Context) ([]course.Subject, error) {
	subjects := make([]course.Subject, 0)
	err := repo.db.SelectContext(ctx, &subjects,
		`SELECT id, name, color FROM subject ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo *courseRepository) GetSubjectByID(ctx context.Context, id string) (course.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Subject{}, course.ErrSubjectNotFound
	}
	var subj course.Subject
	if err := repo.db.GetContext(ctx, &subj, `SELECT id, name, color FROM subject WHERE id = $1`, id); err != nil {
		return course.Subject{}, trapNoRowsErr(err, course.ErrSubjectNotFound, "finding subject by ID")
	}
	return subj, nil
}
