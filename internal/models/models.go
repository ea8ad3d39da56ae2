package models

import "time"

// User is an account row. PasswordHash never leaves the repository layer.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // user | admin
}

// Event is a race weekend on the calendar.
type Event struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TrackName string    `json:"track_name"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	EventDate time.Time `json:"event_date"`
}

// Task is a checklist item tied to an event. AssigneeID nil means
// team-wide (unassigned).
type Task struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"event_id"`
	AssigneeID  *int64     `json:"assignee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"` // prep, pit, safety, travel, tech
	Priority    int        `json:"priority"` // 1 (high) - 5 (low)
	Completed   bool       `json:"completed"`
	DueAt       *time.Time `json:"due_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskCategories is the closed set of checklist categories.
var TaskCategories = map[string]bool{
	"prep":   true,
	"pit":    true,
	"safety": true,
	"travel": true,
	"tech":   true,
}

// NotificationCommand is the message payload for the notification topic.
type NotificationCommand struct {
	Kind        string    `json:"kind"` // task_created, reminder
	TaskID      int64     `json:"task_id"`
	Title       string    `json:"title"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
