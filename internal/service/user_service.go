package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	// GetByID returns domain.ErrUserNotFound when the user does not exist.
	GetByID(ctx context.Context, id int64) (*UserDTO, error)
	// List pages through users ordered by full name.
	List(ctx context.Context, q domain.PageQuery) (PagedResult[UserDTO], error)
	// Create returns domain.ErrDuplicateEmail when the email is taken,
	// compared after trimming and lower-casing.
	Create(ctx context.Context, in CreateUserInput) (*UserDTO, error)
	// Update applies patch and returns domain.ErrUserNotFound or
	// domain.ErrDuplicateEmail.
	Update(ctx context.Context, id int64, patch UserPatch) (*UserDTO, error)
	// Delete removes the user and its tasks. It reports false, without an
	// error, when there was nothing to delete.
	Delete(ctx context.Context, id int64) (bool, error)
}

type userService struct {
	users  repository.UserRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, logger logrus.FieldLogger) UserService {
	return &userService{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *userService) List(ctx context.Context, q domain.PageQuery) (PagedResult[UserDTO], error) {
	q = q.Normalize()
	users, total, err := s.users.GetAll(ctx, repository.PageOptions(q))
	if err != nil {
		return PagedResult[UserDTO]{}, err
	}

	items := make([]UserDTO, len(users))
	for i := range users {
		items[i] = *toUserDTO(&users[i])
	}
	return newPagedResult(items, q, total), nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*UserDTO, error) {
	email := normalizeEmail(in.EmailAddress)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	}

	user := &domain.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    email,
	}
	user.ApplyTimestamps(s.now(), true)

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("user created")
	return toUserDTO(user), nil
}

func (s *userService) Update(ctx context.Context, id int64, patch UserPatch) (*UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.FullName.Value); patch.FullName.Set && name != "" {
		user.FullName = name
	}

	if email := normalizeEmail(patch.EmailAddress.Value); patch.EmailAddress.Set && email != "" && email != strings.ToLower(user.Email) {
		owner, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != user.ID:
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
		user.Email = email
	}

	user.ApplyTimestamps(s.now(), false)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return toUserDTO(user), nil
}

func (s *userService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithFields(logrus.Fields{"user_id": id}).Info("user deleted")
	}
	return deleted, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
