package messaging

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/user"
	realtimesvc "github.com/darasahq/darasa/services/realtime"
)

var ErrNotFound = errors.New("message not found")

const previewLen = 80

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryConversation returns all messages between two users, oldest first.
		QueryConversation(ctx context.Context, userID, otherID string) ([]Message, error)
		// MarkConversationRead marks messages sent by otherID to userID as read.
		MarkConversationRead(ctx context.Context, userID, otherID string) error
	}

	Service struct {
		repo     Repository
		notifSvc *notification.Service
		broker   realtimesvc.Broker
	}
)

func NewService(repo Repository, notifSvc *notification.Service, broker realtimesvc.Broker) *Service {
	return &Service{repo: repo, notifSvc: notifSvc, broker: broker}
}

func (svc *Service) Conversation(ctx context.Context, userID, otherID string) ([]Message, error) {
	return svc.repo.QueryConversation(ctx, userID, otherID)
}

func (svc *Service) MarkRead(ctx context.Context, userID, otherID string) error {
	return svc.repo.MarkConversationRead(ctx, userID, otherID)
}

// Send stores the message, pushes it onto the recipient's feed and leaves a
// notification so the bell catches it even when the thread is closed.
func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	msg := Message{
		SenderID:    sender.ID,
		RecipientID: nm.RecipientID,
		Content:     nm.Content,
		CreatedAt:   time.Now().UTC(),
	}
	msg, err := svc.repo.CreateMessage(ctx, msg)
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	ev, err := realtimesvc.NewEvent(realtimesvc.EventMessage, msg)
	if err != nil {
		return msg, errors.Wrap(err, "encoding message event")
	}
	if err := svc.broker.Publish(ctx, realtimesvc.MessageChannel(msg.RecipientID), ev); err != nil {
		return msg, errors.Wrap(err, "publishing message")
	}

	if _, err := svc.notifSvc.Notify(ctx, notification.Notification{
		UserID:  nm.RecipientID,
		Title:   "New message",
		Message: fmt.Sprintf("%s: %s", sender.FullName, truncatePreview(nm.Content)),
		Type:    notification.TypeMessage,
	}); err != nil {
		return msg, errors.Wrap(err, "notifying recipient")
	}
	return msg, nil
}

// truncatePreview shortens content to the notification preview length,
// backing up to a rune boundary so multi-byte characters stay intact.
func truncatePreview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	cut := previewLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
