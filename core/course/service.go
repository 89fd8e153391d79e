package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// GetCourseByID resolves the Subject reference when set.
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// QueryCourses returns all courses with Subject resolved; professorID
		// narrows to a professor's own courses when non-empty.
		QueryCourses(ctx context.Context, professorID string) ([]Course, error)
		// RecentCourses returns the latest courses by creation time.
		RecentCourses(ctx context.Context, professorID string, limit int) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, professorID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		ProfessorID: professorID,
		Deadline:    nc.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nc.Description != "" {
		crs.Description.SetValid(nc.Description)
	}
	if nc.SubjectID != "" {
		subj, err := svc.repo.GetSubjectByID(ctx, nc.SubjectID)
		if err != nil {
			return Course{}, err
		}
		crs.Subject = &subj
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, professorID string) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, professorID)
}

func (svc *Service) Recent(ctx context.Context, professorID string, limit int) ([]Course, error) {
	return svc.repo.RecentCourses(ctx, professorID, limit)
}

func (svc *Service) Update(ctx context.Context, crs Course, uc UpdateCourse) (Course, error) {
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description.SetValid(uc.Description)
	}
	if uc.Deadline.Valid {
		crs.Deadline = uc.Deadline
	}
	if uc.SubjectID != "" {
		subj, err := svc.repo.GetSubjectByID(ctx, uc.SubjectID)
		if err != nil {
			return Course{}, err
		}
		crs.Subject = &subj
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}
