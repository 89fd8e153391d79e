package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/analytics"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

type analyticsApi struct {
	userSvc       *user.Service
	courseSvc     *course.Service
	submissionSvc *submission.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := analyticsApi{
		userSvc:       deps.UserSvc,
		courseSvc:     deps.CourseSvc,
		submissionSvc: deps.SubmissionSvc,
	}

	ag := g.Group("/analytics", jwt)
	ag.GET("", api.report)
	ag.GET("/overview", api.overview)
}

// snapshot fetches the records the calling user may aggregate over:
// admins everything, professors their students' work and their own courses,
// students their own work.
func (api *analyticsApi) snapshot(ctx context.Context, usr user.User) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	var filter submission.QueryFilter
	var professorID string

	switch {
	case usr.IsAdmin():
	case usr.IsStudent():
		filter.StudentIDs = []string{usr.ID}
	default:
		ids, err := api.userSvc.StudentIDs(ctx, usr.ID)
		if err != nil {
			return snap, errors.Wrap(err, "querying student assignments")
		}
		if len(ids) == 0 {
			ids = []string{usr.ID} // no assignments yet; match nothing but stay scoped
		}
		filter.StudentIDs = ids
		professorID = usr.ID
	}

	students, err := api.userSvc.CountByRole(ctx, user.RoleStudent)
	if err != nil {
		return snap, errors.Wrap(err, "counting students")
	}
	professors, err := api.userSvc.CountByRole(ctx, user.RoleProfessor)
	if err != nil {
		return snap, errors.Wrap(err, "counting professors")
	}
	courses, err := api.courseSvc.Query(ctx, professorID)
	if err != nil {
		return snap, errors.Wrap(err, "querying courses")
	}
	subs, err := api.submissionSvc.Filter(ctx, filter, nil)
	if err != nil {
		return snap, errors.Wrap(err, "querying submissions")
	}
	grades, err := api.submissionSvc.Grades(ctx, filter)
	if err != nil {
		return snap, errors.Wrap(err, "querying grades")
	}

	return analytics.Snapshot{
		Students:    students,
		Professors:  professors,
		Courses:     courses,
		Submissions: subs,
		Grades:      grades,
	}, nil
}

// Handlers

func (api *analyticsApi) report(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	snap, err := api.snapshot(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "building snapshot")
	}
	return ctx.JSON(http.StatusOK, analytics.BuildReport(snap, time.Now()))
}

// overview returns the headline counters without the chart series.
func (api *analyticsApi) overview(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	snap, err := api.snapshot(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "building snapshot")
	}
	report := analytics.BuildReport(snap, time.Now())

	return ctx.JSON(http.StatusOK, echo.Map{
		"total_students":        report.TotalStudents,
		"total_professors":      report.TotalProfessors,
		"total_courses":         report.TotalCourses,
		"total_submissions":     report.TotalSubmissions,
		"average_grade":         report.AverageGrade,
		"submissions_by_status": report.SubmissionsByStatus,
	})
}
