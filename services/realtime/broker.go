// Package realtimesvc carries the change feed that used to be the hosted
// backend's realtime push: new notifications and messages are published to
// per-user channels the API streams to connected clients. The merge rule on
// the consuming side is prepend-and-recompute; the broker itself only moves
// events.
package realtimesvc

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event kinds
const (
	EventNotification = "notification"
	EventMessage      = "message"
)

type Event struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func NewEvent(kind string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: kind, Payload: data}, nil
}

// Channel names a per-user feed.
func Channel(topic, userID string) string {
	return fmt.Sprintf("%s:%s", topic, userID)
}

func NotificationChannel(userID string) string { return Channel("notifications", userID) }
func MessageChannel(userID string) string      { return Channel("messages", userID) }

// Broker is a fire-and-forget pub/sub fabric. Delivery is best effort: a
// slow subscriber may miss events and is expected to re-fetch on reconnect.
type Broker interface {
	Publish(ctx context.Context, channel string, ev Event) error
	// Subscribe returns a receive channel and a cancel function releasing it.
	Subscribe(ctx context.Context, channel string) (<-chan Event, func(), error)
}
