package models

import "time"

// Well known task statuses. Status is free-form text; these are only the
// values the scoring rules recognise.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
)

// DefaultPriority is applied to tasks created without an explicit priority.
const DefaultPriority = 3

// Task is a single tracked work item.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	Priority    int       `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTask returns a task with defaults applied: priority 3, status "pending"
// and a creation time of now (UTC).
func NewTask(title string) Task {
	return Task{
		Title:     title,
		Priority:  DefaultPriority,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	out := t
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	return out
}

// StringPtr is a small helper for optional text fields.
func StringPtr(s string) *string {
	return &s
}
