package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/agenda"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

type agendaApi struct {
	userSvc       *user.Service
	courseSvc     *course.Service
	submissionSvc *submission.Service
	notifSvc      *notification.Service
}

func registerAgendaAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := agendaApi{
		userSvc:       deps.UserSvc,
		courseSvc:     deps.CourseSvc,
		submissionSvc: deps.SubmissionSvc,
		notifSvc:      deps.NotifSvc,
	}

	ag := g.Group("/agenda", jwt)
	ag.GET("", api.events)
	ag.GET("/upcoming", api.upcoming)
	ag.POST("/reminders", api.remind)
}

// events assembles the calling user's calendar: course deadlines for
// everyone, grading tasks for professors, own submissions for students.
func (api *agendaApi) userEvents(ctx context.Context, usr user.User) ([]agenda.Event, error) {
	var professorID string
	if usr.Role == user.RoleProfessor {
		professorID = usr.ID
	}
	courses, err := api.courseSvc.Query(ctx, professorID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	events := agenda.CourseEvents(courses)

	var filter submission.QueryFilter
	switch {
	case usr.IsStudent():
		filter.StudentIDs = []string{usr.ID}
		subs, err := api.submissionSvc.Filter(ctx, filter, nil)
		if err != nil {
			return nil, errors.Wrap(err, "querying submissions")
		}
		events = append(events, agenda.SubmissionEvents(subs)...)
	default:
		filter.ProfessorID = usr.ID
		if usr.IsAdmin() {
			filter.ProfessorID = ""
		}
		subs, err := api.submissionSvc.Filter(ctx, filter, nil)
		if err != nil {
			return nil, errors.Wrap(err, "querying submissions")
		}
		events = append(events, agenda.GradingEvents(subs)...)
	}
	return events, nil
}

// Handlers

func (api *agendaApi) events(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	events, err := api.userEvents(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *agendaApi) upcoming(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	events, err := api.userEvents(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	up := agenda.Upcoming(events, time.Now(), agenda.UpcomingWindow, agenda.UpcomingLimit)
	return ctx.JSON(http.StatusOK, up)
}

// remind creates reminder notifications for the caller's deadlines due soon
// and reports how many went out.
func (api *agendaApi) remind(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	events, err := api.userEvents(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	sent, err := api.notifSvc.RemindDeadlines(ctx.Request().Context(), ctxUsr.ID, events, time.Now())
	if err != nil {
		return errors.Wrap(err, "sending reminders")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sent": sent})
}
