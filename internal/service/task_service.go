package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/metrics"
	"usertask-manager/internal/repository"
)

// TaskService coordinates task level operations backed by repositories.
type TaskService interface {
	// GetByID returns domain.ErrTaskNotFound when the task does not exist.
	GetByID(ctx context.Context, id int64) (*TaskDTO, error)
	// ListByUser pages through a user's tasks, newest first. It returns
	// domain.ErrOwnerNotFound when the user does not exist.
	ListByUser(ctx context.Context, userID int64, q domain.PageQuery) (PagedResult[TaskDTO], error)
	// Create returns domain.ErrOwnerNotFound when the user does not exist.
	Create(ctx context.Context, userID int64, in CreateTaskInput) (*TaskDTO, error)
	Update(ctx context.Context, id int64, patch TaskPatch) (*TaskDTO, error)
	ToggleCompletion(ctx context.Context, id int64) (*TaskDTO, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type taskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, logger logrus.FieldLogger) TaskService {
	return &taskService{
		tasks:  tasks,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*TaskDTO, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTaskDTO(task), nil
}

func (s *taskService) ListByUser(ctx context.Context, userID int64, q domain.PageQuery) (PagedResult[TaskDTO], error) {
	if err := s.requireOwner(ctx, userID); err != nil {
		return PagedResult[TaskDTO]{}, err
	}

	q = q.Normalize()
	tasks, total, err := s.tasks.GetByUserID(ctx, userID, repository.PageOptions(q))
	if err != nil {
		return PagedResult[TaskDTO]{}, err
	}

	items := make([]TaskDTO, len(tasks))
	for i := range tasks {
		items[i] = *toTaskDTO(&tasks[i])
	}
	return newPagedResult(items, q, total), nil
}

func (s *taskService) Create(ctx context.Context, userID int64, in CreateTaskInput) (*TaskDTO, error) {
	if err := s.requireOwner(ctx, userID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Description: strings.TrimSpace(in.TaskDescription),
		IsCompleted: false,
		UserID:      userID,
	}
	task.ApplyTimestamps(s.now(), true)

	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"task_id": task.ID, "user_id": userID}).Info("task created")
	return toTaskDTO(task), nil
}

func (s *taskService) Update(ctx context.Context, id int64, patch TaskPatch) (*TaskDTO, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if desc := strings.TrimSpace(patch.TaskDescription.Value); patch.TaskDescription.Set && desc != "" {
		task.Description = desc
	}
	if patch.IsCompleted.Set {
		task.SetCompleted(patch.IsCompleted.Value, now)
	}

	task.ApplyTimestamps(now, false)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if patch.IsCompleted.Set {
		s.logCompletion(ctx, task)
	}
	return toTaskDTO(task), nil
}

func (s *taskService) ToggleCompletion(ctx context.Context, id int64) (*TaskDTO, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task.ToggleCompleted(now)
	task.ApplyTimestamps(now, false)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logCompletion(ctx, task)
	return toTaskDTO(task), nil
}

func (s *taskService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.tasks.Delete(ctx, id)
}

func (s *taskService) requireOwner(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("%w: no user with id %d", domain.ErrOwnerNotFound, userID)
		}
		return err
	}
	return nil
}

// logCompletion records the task's new state together with the owner's
// completed count. Counting failures are logged, never returned.
func (s *taskService) logCompletion(ctx context.Context, task *domain.Task) {
	metrics.RecordCompletionChange(task.IsCompleted)

	fields := logrus.Fields{
		"task_id":      task.ID,
		"user_id":      task.UserID,
		"is_completed": task.IsCompleted,
	}

	completed, err := s.tasks.CountCompletedByUser(ctx, task.UserID)
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("count completed tasks")
		return
	}
	fields["user_completed_tasks"] = completed
	s.logger.WithFields(fields).Info("task completion changed")
}
