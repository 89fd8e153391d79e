package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/messaging"
)

type messageRepository struct {
	db *sqlx.DB
}

var _ messaging.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

type messageRow struct {
	ID          string    `db:"id"`
	SenderID    string    `db:"sender_id"`
	RecipientID string    `db:"recipient_id"`
	Content     string    `db:"content"`
	Read        bool      `db:"read"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r messageRow) unpack() messaging.Message {
	return messaging.Message(r)
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	msg.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO message (id, sender_id, recipient_id, content, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Content, msg.Read, msg.CreatedAt,
	)
	if err != nil {
		return messaging.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo *messageRepository) QueryConversation(ctx context.Context, userID, otherID string) ([]messaging.Message, error) {
	var rows []messageRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, sender_id, recipient_id, content, read, created_at FROM message
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		 ORDER BY created_at`,
		userID, otherID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying conversation")
	}
	msgs := make([]messaging.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.unpack())
	}
	return msgs, nil
}

func (repo *messageRepository) MarkConversationRead(ctx context.Context, userID, otherID string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE message SET read = TRUE WHERE recipient_id = $1 AND sender_id = $2 AND NOT read`,
		userID, otherID,
	)
	return errors.Wrap(err, "marking conversation read")
}
