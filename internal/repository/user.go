package repository

import (
	"context"

	"usertask-manager/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context, opts ListOptions) ([]domain.User, int, error)
	Create(ctx context.Context, user *domain.User) (int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
