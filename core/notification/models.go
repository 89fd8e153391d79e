package notification

import "time"

// Types mirror what the bell groups on: direct messages vs. reminders
// (feedback, grades, comments).
const (
	TypeMessage  = "message"
	TypeReminder = "reminder"
	TypeGrade    = "grade"
	TypeComment  = "comment"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
