package repository

import (
	"context"

	"usertask-manager/internal/domain"
)

// TaskRepository exposes persistence operations for Task aggregates.
type TaskRepository interface {
	Init(ctx context.Context) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	GetByUserID(ctx context.Context, userID int64, opts ListOptions) ([]domain.Task, int, error)
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) (bool, error)
	CountCompletedByUser(ctx context.Context, userID int64) (int, error)
}
