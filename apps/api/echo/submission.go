package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
	exportsvc "github.com/darasahq/darasa/services/export"
)

var errSubNotFoundInCtx = errors.New("submission object not found in echo.Context")

type submissionApi struct {
	svc       *submission.Service
	courseSvc *course.Service
	userSvc   *user.Service
	notifSvc  *notification.Service
	validate  *validator.Validate
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := submissionApi{
		svc:       deps.SubmissionSvc,
		courseSvc: deps.CourseSvc,
		userSvc:   deps.UserSvc,
		notifSvc:  deps.NotifSvc,
		validate:  deps.Validate,
	}

	sg := g.Group("/submissions", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, studentMiddleware())
	sg.GET("/export", api.export, professorMiddleware())

	dg := sg.Group("/:id", api.objectMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("/grade", api.grade, professorMiddleware())
}

// scopedFilter narrows a query filter to what the calling user may see:
// students their own rows, professors their courses' rows.
func (api *submissionApi) scopedFilter(usr user.User, filter submission.QueryFilter) submission.QueryFilter {
	switch {
	case usr.IsAdmin():
	case usr.IsStudent():
		filter.StudentIDs = []string{usr.ID}
	default:
		filter.ProfessorID = usr.ID
	}
	return filter
}

// objectMiddleware loads the submission and enforces visibility: the owning
// student, the course's professor, or an admin.
func (api *submissionApi) objectMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == submission.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding submission by ID")
			}

			ctxUsr, err := getContextUser(ctx, api.userSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			owns := sub.StudentID == ctxUsr.ID ||
				(sub.Course != nil && sub.Course.ProfessorID == ctxUsr.ID)
			if !ctxUsr.IsAdmin() && !owns {
				return errHttpNotFound
			}

			ctx.Set("object", sub)
			return next(ctx)
		}
	}
}

// Handlers

func (api *submissionApi) create(ctx echo.Context) error {
	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// course must exist
	if _, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) query(ctx echo.Context) error {
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	subs, err := api.svc.Filter(ctx.Request().Context(), api.scopedFilter(ctxUsr, *filter), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	sub, ok := ctx.Get("object").(submission.Submission)
	if !ok {
		return errors.Wrap(errSubNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	sub, ok := ctx.Get("object").(submission.Submission)
	if !ok {
		return errors.Wrap(errSubNotFoundInCtx, "retrieving object from context")
	}

	var data submission.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}

	// tell the student; grading must not fail on a notification error
	title := "Submission graded"
	courseTitle := "your submission"
	if sub.Course != nil {
		courseTitle = sub.Course.Title
	}
	msg := fmt.Sprintf("%s: %.1f/20", courseTitle, data.Grade)
	if data.Comment != "" {
		msg += " - " + data.Comment
	}
	if _, err := api.notifSvc.Notify(ctx.Request().Context(), notification.Notification{
		UserID:  sub.StudentID,
		Title:   title,
		Message: msg,
		Type:    notification.TypeGrade,
	}); err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "notifying student"))
	}

	return ctx.JSON(http.StatusOK, sub)
}

// export streams the caller's submissions as an xlsx workbook.
func (api *submissionApi) export(ctx echo.Context) error {
	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(submission.QueryFilter)
	}
	filter.Clean()

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	subs, err := api.svc.Filter(ctx.Request().Context(), api.scopedFilter(ctxUsr, *filter), nil)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	buf, err := exportsvc.SubmissionsWorkbook(subs)
	if err != nil {
		return errors.Wrap(err, "rendering workbook")
	}

	filename := fmt.Sprintf("submissions-%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
