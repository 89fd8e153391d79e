package redisstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/prefs"
)

// reminderSetTTL bounds the dedup set; entries only matter while their
// event is still inside the reminder window.
const reminderSetTTL = 30 * 24 * time.Hour

type prefStore struct {
	client *redis.Client
}

var _ prefs.Store = (*prefStore)(nil) // interface compliance check

func NewPrefStore(client *redis.Client) *prefStore {
	return &prefStore{client: client}
}

func (store *prefStore) DoNotDisturb(ctx context.Context, userID string) (bool, error) {
	val, err := store.client.Get(ctx, prefs.DoNotDisturbKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "reading do-not-disturb")
	}
	return val == "1", nil
}

func (store *prefStore) SetDoNotDisturb(ctx context.Context, userID string, enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	err := store.client.Set(ctx, prefs.DoNotDisturbKey(userID), val, 0).Err()
	return errors.Wrap(err, "setting do-not-disturb")
}

func (store *prefStore) WasReminded(ctx context.Context, userID, eventID string) (bool, error) {
	seen, err := store.client.SIsMember(ctx, prefs.ReminderSeenKey(userID), eventID).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking reminder set")
	}
	return seen, nil
}

func (store *prefStore) MarkReminded(ctx context.Context, userID string, eventIDs ...string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(eventIDs))
	for _, id := range eventIDs {
		members = append(members, id)
	}
	key := prefs.ReminderSeenKey(userID)
	pipe := store.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, reminderSetTTL)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "marking reminders seen")
}
