// Package prefs defines the small per-user preference store backing the
// notification bell and agenda reminders. The SPA kept these in ad-hoc
// browser storage; here the schema is explicit and the store is injected.
package prefs

import (
	"context"
	"fmt"
)

// Key schema. Every key is namespaced by user ID.
const (
	keyDoNotDisturb = "prefs:dnd:%s"
	keyReminderSeen = "agenda:reminders:%s"
)

func DoNotDisturbKey(userID string) string { return fmt.Sprintf(keyDoNotDisturb, userID) }
func ReminderSeenKey(userID string) string { return fmt.Sprintf(keyReminderSeen, userID) }

// Store holds small UI preferences: the do-not-disturb flag and the set of
// event IDs a user has already been reminded about.
type Store interface {
	DoNotDisturb(ctx context.Context, userID string) (bool, error)
	SetDoNotDisturb(ctx context.Context, userID string, enabled bool) error

	WasReminded(ctx context.Context, userID, eventID string) (bool, error)
	MarkReminded(ctx context.Context, userID string, eventIDs ...string) error
}
