package domain

import "errors"

var (
	// ErrUserNotFound is returned when no user has the requested id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateEmail is a conflict: another user already owns the email.
	ErrDuplicateEmail = errors.New("email address already registered")
	// ErrOwnerNotFound is a conflict: a task operation names a user that does not exist.
	ErrOwnerNotFound = errors.New("owner user does not exist")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTaskNotFound)
}

// IsConflict reports whether err is a business-rule conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrOwnerNotFound)
}
