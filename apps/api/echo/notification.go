package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/user"
	realtimesvc "github.com/darasahq/darasa/services/realtime"
)

type notificationApi struct {
	svc     *notification.Service
	userSvc *user.Service
	broker  realtimesvc.Broker
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{
		svc:     deps.NotifSvc,
		userSvc: deps.UserSvc,
		broker:  deps.Broker,
	}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("/:id/read", api.markRead)
	ng.POST("/read-all", api.markAllRead)
	ng.GET("/stream", api.stream)
	ng.GET("/preferences", api.preferences)
	ng.PUT("/preferences", api.updatePreferences)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	notifs, err := api.svc.Recent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkAllRead(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// stream pushes the user's notification and message events over SSE until
// the client disconnects.
func (api *notificationApi) stream(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	reqCtx := ctx.Request().Context()

	notifs, cancelNotifs, err := api.broker.Subscribe(reqCtx, realtimesvc.NotificationChannel(claims.Subject))
	if err != nil {
		return errors.Wrap(err, "subscribing to notifications")
	}
	defer cancelNotifs()

	msgs, cancelMsgs, err := api.broker.Subscribe(reqCtx, realtimesvc.MessageChannel(claims.Subject))
	if err != nil {
		return errors.Wrap(err, "subscribing to messages")
	}
	defer cancelMsgs()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	writeEvent := func(ev realtimesvc.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return errors.Wrap(err, "encoding event")
		}
		if _, err = fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case ev, ok := <-notifs:
			if !ok {
				return nil
			}
			if err := writeEvent(ev); err != nil {
				return nil // client gone
			}
		case ev, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := writeEvent(ev); err != nil {
				return nil // client gone
			}
		}
	}
}

type PreferencesResponse struct {
	DoNotDisturb bool `json:"do_not_disturb"`
}

func (api *notificationApi) preferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dnd, err := api.svc.DoNotDisturb(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "reading preferences")
	}
	return ctx.JSON(http.StatusOK, PreferencesResponse{DoNotDisturb: dnd})
}

func (api *notificationApi) updatePreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data PreferencesResponse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreferencesResponse")
	}

	if err := api.svc.SetDoNotDisturb(ctx.Request().Context(), claims.Subject, data.DoNotDisturb); err != nil {
		return errors.Wrap(err, "updating preferences")
	}
	return ctx.JSON(http.StatusOK, data)
}
