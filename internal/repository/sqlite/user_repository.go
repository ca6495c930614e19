package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	email_address TEXT NOT NULL,
	registration_date DATETIME NOT NULL,
	updated_at DATETIME NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_address ON users(email_address);
`

const selectUser = `
SELECT u.user_id, u.full_name, u.email_address, u.registration_date, u.updated_at,
	COUNT(t.task_id),
	COALESCE(SUM(CASE WHEN t.is_completed = 1 THEN 1 ELSE 0 END), 0)
FROM users u
LEFT JOIN tasks t ON t.user_id = u.user_id`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`
WHERE u.user_id = ?
GROUP BY u.user_id`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`
WHERE u.email_address = ?
GROUP BY u.user_id`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetAll(ctx context.Context, opts repository.ListOptions) ([]domain.User, int, error) {
	where := ""
	var args []any
	if search := strings.TrimSpace(opts.Search); search != "" {
		where = `WHERE u.full_name LIKE ? OR u.email_address LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectUser+`
`+where+`
GROUP BY u.user_id
ORDER BY u.full_name ASC, u.user_id ASC
LIMIT ? OFFSET ?`,
		append(args, limitArg(opts.Limit), opts.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (full_name, email_address, registration_date, updated_at)
VALUES (?, ?, ?, ?)`,
		user.FullName,
		user.Email,
		user.RegistrationDate.UTC(),
		nullTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET full_name=?, email_address=?, updated_at=?
WHERE user_id=?`,
		user.FullName,
		user.Email,
		nullTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w", domain.ErrDuplicateEmail)
		}
		return fmt.Errorf("update user: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user update rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes the user; owned tasks go with it through the foreign key cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("user delete rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email_address = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.RegistrationDate,
		&updatedAt,
		&user.Tasks.Total,
		&user.Tasks.Completed,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.RegistrationDate = user.RegistrationDate.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		user.UpdatedAt = &t
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// limitArg maps "no limit" to sqlite's -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
