package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/submission"
)

type submissionRepository struct {
	db      *submissionTable
	courses *courseTable
	users   *userTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission, courses: db.course, users: db.user}
}

// resolve attaches the Course reference and the student's name, the way the
// SQL implementation joins them in.
func (repo *submissionRepository) resolve(sub submission.Submission) submission.Submission {
	repo.courses.RLock()
	if crs, ok := repo.courses.table[sub.CourseID]; ok {
		crsCopy := *crs
		sub.Course = &crsCopy
	}
	repo.courses.RUnlock()

	repo.users.RLock()
	if usr, ok := repo.users.table[sub.StudentID]; ok {
		sub.StudentName = usr.FullName
	}
	repo.users.RUnlock()
	return sub
}

func (repo *submissionRepository) match(sub submission.Submission, filter submission.QueryFilter) bool {
	if len(filter.StudentIDs) > 0 {
		var found bool
		for _, id := range filter.StudentIDs {
			if sub.StudentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ProfessorID != "" && (sub.Course == nil || sub.Course.ProfessorID != filter.ProfessorID) {
		return false
	}
	if filter.Status != "" && sub.Status != filter.Status {
		return false
	}
	if filter.SubjectName != "" {
		name, ok := sub.SubjectName()
		if !ok || name != filter.SubjectName {
			return false
		}
	}
	if filter.Search != "" {
		var title string
		if sub.Course != nil {
			title = sub.Course.Title
		}
		if !strings.Contains(strings.ToLower(title), filter.Search) &&
			!strings.Contains(strings.ToLower(sub.StudentName), filter.Search) {
			return false
		}
	}
	if filter.GradedOnly && !sub.Grade.Valid {
		return false
	}
	return true
}

func (repo *submissionRepository) filter(filter submission.QueryFilter) []submission.Submission {
	subs := make([]submission.Submission, 0)
	for _, sub := range repo.db.table {
		resolved := repo.resolve(*sub)
		if repo.match(resolved, filter) {
			subs = append(subs, resolved)
		}
	}
	return subs
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	sub.ID = uuid.New().String()
	stored := sub
	stored.Course = nil // resolved at fetch time
	repo.db.table[sub.ID] = &stored
	repo.db.Unlock()

	return repo.resolve(sub), nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	sub, ok := repo.db.table[id]
	repo.db.RUnlock()

	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.resolve(*sub), nil
}

func (repo *submissionRepository) FilterSubmissions(ctx context.Context, filter submission.QueryFilter, ordering []core.DBOrdering) ([]submission.Submission, error) {
	repo.db.RLock()
	subs := repo.filter(filter)
	repo.db.RUnlock()

	// created_at DESC default; richer orderings are a SQL concern
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (repo *submissionRepository) QueryGrades(ctx context.Context, filter submission.QueryFilter) ([]float64, error) {
	repo.db.RLock()
	subs := repo.filter(filter)
	repo.db.RUnlock()

	grades := make([]float64, 0, len(subs))
	for _, sub := range subs {
		if sub.Grade.Valid {
			grades = append(grades, sub.Grade.Float64)
		}
	}
	return grades, nil
}

func (repo *submissionRepository) CountSubmissionsByStatus(ctx context.Context, status string, filter submission.QueryFilter) (int, error) {
	filter.Status = status

	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.filter(filter)), nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	if _, ok := repo.db.table[sub.ID]; !ok {
		repo.db.Unlock()
		return submission.Submission{}, submission.ErrNotFound
	}
	stored := sub
	stored.Course = nil
	repo.db.table[sub.ID] = &stored
	repo.db.Unlock()

	return repo.resolve(sub), nil
}
