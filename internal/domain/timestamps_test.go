package domain

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUserApplyTimestamps(t *testing.T) {
	var u User
	u.ApplyTimestamps(t0, true)
	if !u.RegistrationDate.Equal(t0) {
		t.Fatalf("expected registration date %v, got %v", t0, u.RegistrationDate)
	}
	if u.UpdatedAt != nil {
		t.Fatalf("new user must not have updated_at")
	}

	later := t0.Add(time.Hour)
	u.ApplyTimestamps(later, false)
	if !u.RegistrationDate.Equal(t0) {
		t.Fatalf("registration date changed on update")
	}
	if u.UpdatedAt == nil || !u.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, u.UpdatedAt)
	}
}

func TestTaskApplyTimestampsNew(t *testing.T) {
	task := Task{Description: "write report"}
	task.ApplyTimestamps(t0, true)
	if !task.CreationDate.Equal(t0) {
		t.Fatalf("expected creation date %v, got %v", t0, task.CreationDate)
	}
	if task.UpdatedAt != nil || task.CompletionDate != nil {
		t.Fatalf("new pending task must have no updated_at or completion date")
	}
}

func TestTaskApplyTimestampsSyncsCompletionDate(t *testing.T) {
	task := Task{CreationDate: t0, IsCompleted: true}
	task.ApplyTimestamps(t0.Add(time.Minute), false)
	if task.CompletionDate == nil {
		t.Fatalf("completed task without completion date must be stamped")
	}

	stamped := *task.CompletionDate
	task.ApplyTimestamps(t0.Add(time.Hour), false)
	if !task.CompletionDate.Equal(stamped) {
		t.Fatalf("existing completion date must be kept, got %v", task.CompletionDate)
	}

	task.IsCompleted = false
	task.ApplyTimestamps(t0.Add(2*time.Hour), false)
	if task.CompletionDate != nil {
		t.Fatalf("pending task must have no completion date")
	}
}

func TestTaskSetCompletedRestamps(t *testing.T) {
	task := Task{}
	task.SetCompleted(true, t0)
	if task.CompletionDate == nil || !task.CompletionDate.Equal(t0) {
		t.Fatalf("expected completion date %v, got %v", t0, task.CompletionDate)
	}

	later := t0.Add(time.Hour)
	task.SetCompleted(true, later)
	if !task.CompletionDate.Equal(later) {
		t.Fatalf("setting completed again must re-stamp, got %v", task.CompletionDate)
	}

	task.SetCompleted(false, later)
	if task.IsCompleted || task.CompletionDate != nil {
		t.Fatalf("expected pending task without completion date")
	}
}

func TestTaskToggleCompleted(t *testing.T) {
	task := Task{}
	task.ToggleCompleted(t0)
	if !task.IsCompleted || task.CompletionDate == nil {
		t.Fatalf("first toggle must complete the task")
	}
	task.ToggleCompleted(t0.Add(time.Minute))
	if task.IsCompleted || task.CompletionDate != nil {
		t.Fatalf("second toggle must reopen the task")
	}
}
