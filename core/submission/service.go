package submission

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var ErrNotFound = errors.New("submission not found")

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		// FilterSubmissions resolves Course -> Subject on every row and
		// orders by creation time descending unless told otherwise.
		FilterSubmissions(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Submission, error)
		// QueryGrades returns the grade values of rows with a non-null grade.
		QueryGrades(ctx context.Context, filter QueryFilter) ([]float64, error)
		CountSubmissionsByStatus(ctx context.Context, status string, filter QueryFilter) (int, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	now := time.Now().UTC()
	sub := Submission{
		CourseID:  ns.CourseID,
		StudentID: studentID,
		Status:    StatusSubmitted,
		CreatedAt: now,
	}
	sub.SubmittedAt.SetValid(now)
	if ns.FileURL != "" {
		sub.FileURL.SetValid(ns.FileURL)
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Submission, error) {
	return svc.repo.FilterSubmissions(ctx, filter, ordering)
}

func (svc *Service) Grades(ctx context.Context, filter QueryFilter) ([]float64, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) CountByStatus(ctx context.Context, status string, filter QueryFilter) (int, error) {
	return svc.repo.CountSubmissionsByStatus(ctx, status, filter)
}

// Grade records a professor's grade on a submission.
func (svc *Service) Grade(ctx context.Context, sub Submission, gs GradeSubmission) (Submission, error) {
	sub.Status = StatusGraded
	sub.Grade.SetValid(gs.Grade)
	sub.GradedAt.SetValid(time.Now().UTC())
	if gs.Comment != "" {
		sub.Comment.SetValid(gs.Comment)
	}
	return svc.repo.UpdateSubmission(ctx, sub)
}
