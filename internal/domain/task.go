package domain

import "time"

// TaskStatus filters task listings by completion state.
type TaskStatus string

const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusPending   TaskStatus = "pending"
)

// ParseTaskStatus maps a query value to a TaskStatus, defaulting to all.
func ParseTaskStatus(s string) TaskStatus {
	switch TaskStatus(s) {
	case TaskStatusCompleted, TaskStatusPending:
		return TaskStatus(s)
	default:
		return TaskStatusAll
	}
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID             int64
	Description    string
	IsCompleted    bool
	CreationDate   time.Time
	UpdatedAt      *time.Time
	CompletionDate *time.Time
	UserID         int64
	UserFullName   string
}

// SetCompleted replaces the completion flag and re-stamps the completion
// date even when the flag value does not change.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.IsCompleted = completed
	if completed {
		now = now.UTC()
		t.CompletionDate = &now
		return
	}
	t.CompletionDate = nil
}

// ToggleCompleted flips the completion flag.
func (t *Task) ToggleCompleted(now time.Time) {
	t.SetCompleted(!t.IsCompleted, now)
}

// ApplyTimestamps stamps the task before it is written and keeps
// CompletionDate in step with IsCompleted.
func (t *Task) ApplyTimestamps(now time.Time, isNew bool) {
	now = now.UTC()
	if isNew {
		t.CreationDate = now
		t.UpdatedAt = nil
	} else {
		t.UpdatedAt = &now
	}

	switch {
	case t.IsCompleted && t.CompletionDate == nil:
		t.CompletionDate = &now
	case !t.IsCompleted:
		t.CompletionDate = nil
	}
}
