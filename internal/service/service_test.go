package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/repository"
	"usertask-manager/internal/repository/sqlite"
)

// stepClock returns a time one minute later on every call.
type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	users *userService
	tasks *taskService
	clock *stepClock
	logs  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "svc.db"), repository.RetryPolicy{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := taskRepo.Init(ctx); err != nil {
		t.Fatalf("init tasks: %v", err)
	}

	logger, hook := test.NewNullLogger()
	clock := &stepClock{t: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	return &fixture{
		users: &userService{users: userRepo, logger: logger, now: clock.now},
		tasks: &taskService{tasks: taskRepo, users: userRepo, logger: logger, now: clock.now},
		clock: clock,
		logs:  hook,
	}
}

func (f *fixture) mustCreateUser(t *testing.T, name, email string) *UserDTO {
	t.Helper()
	u, err := f.users.Create(context.Background(), CreateUserInput{FullName: name, EmailAddress: email})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) mustCreateTask(t *testing.T, userID int64, desc string) *TaskDTO {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), userID, CreateTaskInput{TaskDescription: desc})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateUserNormalizesInput(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "  Ada Lovelace  ", "  Ada@Example.COM ")

	if u.FullName != "Ada Lovelace" {
		t.Fatalf("expected trimmed name, got %q", u.FullName)
	}
	if u.EmailAddress != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", u.EmailAddress)
	}
	if !u.RegistrationDate.Equal(f.clock.t) {
		t.Fatalf("expected registration date %v, got %v", f.clock.t, u.RegistrationDate)
	}
	if u.UpdatedAt != nil {
		t.Fatalf("new user must not have updatedAt")
	}
	if u.TotalTasks != 0 || u.CompletedTasks != 0 {
		t.Fatalf("new user must have no tasks")
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.mustCreateUser(t, "Ada", "ada@example.com")

	_, err := f.users.Create(context.Background(), CreateUserInput{FullName: "Other", EmailAddress: "ADA@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	f.mustCreateUser(t, "Grace", "grace@example.com")

	got, err := f.users.Update(ctx, u.UserID, UserPatch{FullName: Some("   ")})
	if err != nil {
		t.Fatalf("update with blank name: %v", err)
	}
	if got.FullName != "Ada" || got.EmailAddress != "ada@example.com" {
		t.Fatalf("blank fields must be ignored, got %+v", got)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(f.clock.t) {
		t.Fatalf("expected updatedAt %v, got %v", f.clock.t, got.UpdatedAt)
	}
	if !got.RegistrationDate.Equal(u.RegistrationDate) {
		t.Fatalf("registration date must not change")
	}

	got, err = f.users.Update(ctx, u.UserID, UserPatch{EmailAddress: Some("ADA@example.com")})
	if err != nil {
		t.Fatalf("same email in another case must be accepted: %v", err)
	}

	_, err = f.users.Update(ctx, u.UserID, UserPatch{EmailAddress: Some("grace@example.com")})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err = f.users.Update(ctx, u.UserID, UserPatch{FullName: Some("Ada King"), EmailAddress: Some("ada.king@example.com")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FullName != "Ada King" || got.EmailAddress != "ada.king@example.com" {
		t.Fatalf("update not applied: %+v", got)
	}

	if _, err := f.users.Update(ctx, 999, UserPatch{FullName: Some("Nobody")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListUsersPaging(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Ann", "Ben", "Cat", "Dan", "Eve"} {
		f.mustCreateUser(t, name, name+"@example.com")
	}

	page, err := f.users.List(context.Background(), domain.NewPageQuery(2, 2))
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if page.TotalCount != 5 || page.TotalPages != 3 {
		t.Fatalf("expected 5 users over 3 pages, got %d/%d", page.TotalCount, page.TotalPages)
	}
	if !page.HasPrevious || !page.HasNext {
		t.Fatalf("middle page must have both neighbours: %+v", page)
	}
	if len(page.Items) != 2 || page.Items[0].FullName != "Cat" {
		t.Fatalf("unexpected page items %+v", page.Items)
	}

	empty, err := f.users.List(context.Background(), domain.NewPageQuery(10, 2))
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if empty.Items == nil || len(empty.Items) != 0 || empty.HasNext {
		t.Fatalf("page past the end must be empty, got %+v", empty)
	}
}

func TestDeleteUserReportsOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	task := f.mustCreateTask(t, u.UserID, "write the notes")

	deleted, err := f.users.Delete(ctx, u.UserID)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = f.users.Delete(ctx, u.UserID)
	if err != nil || deleted {
		t.Fatalf("second delete must report false, got %v %v", deleted, err)
	}
	if _, err := f.tasks.GetByID(ctx, task.TaskID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("owned tasks must be removed with the user, got %v", err)
	}
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")

	task := f.mustCreateTask(t, u.UserID, "  draft the analysis  ")
	if task.TaskDescription != "draft the analysis" {
		t.Fatalf("expected trimmed description, got %q", task.TaskDescription)
	}
	if task.IsCompleted || task.CompletionDate != nil {
		t.Fatalf("new task must be pending")
	}
	if task.UserFullName != "Ada" || task.UserID != u.UserID {
		t.Fatalf("expected owner fields, got %+v", task)
	}
	if !task.CreationDate.Equal(f.clock.t) {
		t.Fatalf("expected creation date %v, got %v", f.clock.t, task.CreationDate)
	}

	_, err := f.tasks.Create(context.Background(), 404, CreateTaskInput{TaskDescription: "orphan task"})
	if !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestListTasksByUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	first := f.mustCreateTask(t, u.UserID, "first task")
	f.mustCreateTask(t, u.UserID, "second task")
	third := f.mustCreateTask(t, u.UserID, "third task")
	if _, err := f.tasks.ToggleCompletion(ctx, first.TaskID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	page, err := f.tasks.ListByUser(ctx, u.UserID, domain.NewPageQuery(1, 2))
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.TotalCount != 3 || page.TotalPages != 2 || page.HasPrevious || !page.HasNext {
		t.Fatalf("unexpected page metadata %+v", page)
	}
	if page.Items[0].TaskID != third.TaskID {
		t.Fatalf("expected newest task first, got %d", page.Items[0].TaskID)
	}

	q := domain.NewPageQuery(1, 10)
	q.Status = domain.TaskStatusCompleted
	done, err := f.tasks.ListByUser(ctx, u.UserID, q)
	if err != nil || done.TotalCount != 1 || done.Items[0].TaskID != first.TaskID {
		t.Fatalf("completed filter: %v %+v", err, done)
	}

	if _, err := f.tasks.ListByUser(ctx, 404, domain.NewPageQuery(1, 10)); !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestUpdateTaskRestampsCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	task := f.mustCreateTask(t, u.UserID, "first task")

	got, err := f.tasks.Update(ctx, task.TaskID, TaskPatch{IsCompleted: Some(true)})
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if !got.IsCompleted || got.CompletionDate == nil {
		t.Fatalf("expected completed task with date, got %+v", got)
	}
	firstStamp := *got.CompletionDate

	got, err = f.tasks.Update(ctx, task.TaskID, TaskPatch{IsCompleted: Some(true)})
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !got.CompletionDate.After(firstStamp) {
		t.Fatalf("completion date must be re-stamped, was %v now %v", firstStamp, got.CompletionDate)
	}

	got, err = f.tasks.Update(ctx, task.TaskID, TaskPatch{TaskDescription: Some("  "), IsCompleted: Some(false)})
	if err != nil {
		t.Fatalf("reopen task: %v", err)
	}
	if got.IsCompleted || got.CompletionDate != nil {
		t.Fatalf("reopened task must have no completion date, got %+v", got)
	}
	if got.TaskDescription != "first task" {
		t.Fatalf("blank description must be ignored, got %q", got.TaskDescription)
	}
	if got.UpdatedAt == nil {
		t.Fatalf("expected updatedAt after update")
	}

	got, err = f.tasks.Update(ctx, task.TaskID, TaskPatch{TaskDescription: Some("renamed task")})
	if err != nil || got.TaskDescription != "renamed task" || got.IsCompleted {
		t.Fatalf("description update: %v %+v", err, got)
	}

	stored, err := f.tasks.GetByID(ctx, task.TaskID)
	if err != nil || stored.TaskDescription != "renamed task" {
		t.Fatalf("update not persisted: %v %+v", err, stored)
	}

	if _, err := f.tasks.Update(ctx, 999, TaskPatch{IsCompleted: Some(true)}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleCompletionLogsCompletedCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	task := f.mustCreateTask(t, u.UserID, "first task")
	f.logs.Reset()

	got, err := f.tasks.ToggleCompletion(ctx, task.TaskID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !got.IsCompleted || got.CompletionDate == nil {
		t.Fatalf("toggle must complete the task")
	}

	entry := f.logs.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel || entry.Message != "task completion changed" {
		t.Fatalf("expected completion log entry, got %+v", entry)
	}
	if entry.Data["user_completed_tasks"] != 1 {
		t.Fatalf("expected completed count 1, got %v", entry.Data["user_completed_tasks"])
	}

	got, err = f.tasks.ToggleCompletion(ctx, task.TaskID)
	if err != nil || got.IsCompleted || got.CompletionDate != nil {
		t.Fatalf("second toggle must reopen: %v %+v", err, got)
	}

	user, err := f.users.GetByID(ctx, u.UserID)
	if err != nil || user.TotalTasks != 1 || user.CompletedTasks != 0 {
		t.Fatalf("unexpected aggregates: %v %+v", err, user)
	}

	if _, err := f.tasks.ToggleCompletion(ctx, 999); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteTaskReportsOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "Ada", "ada@example.com")
	task := f.mustCreateTask(t, u.UserID, "first task")

	deleted, err := f.tasks.Delete(ctx, task.TaskID)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = f.tasks.Delete(ctx, task.TaskID)
	if err != nil || deleted {
		t.Fatalf("second delete must report false, got %v %v", deleted, err)
	}
}
