package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/agenda"
	"github.com/darasahq/darasa/core/prefs"
	realtimesvc "github.com/darasahq/darasa/services/realtime"
)

var ErrNotFound = errors.New("notification not found")

// RecentLimit caps the bell dropdown.
const RecentLimit = 20

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// RecentNotifications returns a user's latest notifications, newest first.
		RecentNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id, userID string) error
		MarkAllNotificationsRead(ctx context.Context, userID string) error
	}

	Service struct {
		repo   Repository
		prefs  prefs.Store
		broker realtimesvc.Broker
	}
)

func NewService(repo Repository, prefStore prefs.Store, broker realtimesvc.Broker) *Service {
	return &Service{repo: repo, prefs: prefStore, broker: broker}
}

func (svc *Service) Recent(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.RecentNotifications(ctx, userID, RecentLimit)
}

func (svc *Service) MarkRead(ctx context.Context, id, userID string) error {
	return svc.repo.MarkNotificationRead(ctx, id, userID)
}

func (svc *Service) MarkAllRead(ctx context.Context, userID string) error {
	return svc.repo.MarkAllNotificationsRead(ctx, userID)
}

func (svc *Service) DoNotDisturb(ctx context.Context, userID string) (bool, error) {
	return svc.prefs.DoNotDisturb(ctx, userID)
}

func (svc *Service) SetDoNotDisturb(ctx context.Context, userID string, enabled bool) error {
	return svc.prefs.SetDoNotDisturb(ctx, userID, enabled)
}

// Notify stores a notification and pushes it onto the user's feed.
func (svc *Service) Notify(ctx context.Context, n Notification) (Notification, error) {
	n.CreatedAt = time.Now().UTC()
	n, err := svc.repo.CreateNotification(ctx, n)
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	ev, err := realtimesvc.NewEvent(realtimesvc.EventNotification, n)
	if err != nil {
		return n, errors.Wrap(err, "encoding notification event")
	}
	if err := svc.broker.Publish(ctx, realtimesvc.NotificationChannel(n.UserID), ev); err != nil {
		return n, errors.Wrap(err, "publishing notification")
	}
	return n, nil
}

// RemindDeadlines creates reminder notifications for agenda events due soon.
// Events already reminded about are skipped (per-user dedup set); users with
// do-not-disturb on receive nothing. Returns how many reminders went out.
func (svc *Service) RemindDeadlines(ctx context.Context, userID string, events []agenda.Event, now time.Time) (int, error) {
	dnd, err := svc.prefs.DoNotDisturb(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "reading do-not-disturb")
	}
	if dnd {
		return 0, nil
	}

	var sent []string
	for _, ev := range agenda.DueSoon(events, now) {
		seen, err := svc.prefs.WasReminded(ctx, userID, ev.ID)
		if err != nil {
			return len(sent), errors.Wrap(err, "checking reminder dedup")
		}
		if seen {
			continue
		}

		if _, err := svc.Notify(ctx, Notification{
			UserID:  userID,
			Title:   "Reminder",
			Message: fmt.Sprintf("%s - %s", ev.Title, ev.Date.Format("02 Jan 15:04")),
			Type:    TypeReminder,
		}); err != nil {
			return len(sent), err
		}
		sent = append(sent, ev.ID)
	}

	if len(sent) > 0 {
		if err := svc.prefs.MarkReminded(ctx, userID, sent...); err != nil {
			return len(sent), errors.Wrap(err, "marking reminders seen")
		}
	}
	return len(sent), nil
}
