package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	user_id BIGSERIAL PRIMARY KEY,
	full_name VARCHAR(200) NOT NULL,
	email_address VARCHAR(150) NOT NULL,
	registration_date TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_address ON users(email_address);
`

const selectUser = `
SELECT u.user_id, u.full_name, u.email_address, u.registration_date, u.updated_at,
	COUNT(t.task_id),
	COUNT(t.task_id) FILTER (WHERE t.is_completed)
FROM users u
LEFT JOIN tasks t ON t.user_id = u.user_id`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`
WHERE u.user_id = $1
GROUP BY u.user_id`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`
WHERE u.email_address = $1
GROUP BY u.user_id`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetAll(ctx context.Context, opts repository.ListOptions) ([]domain.User, int, error) {
	var a args
	where := ""
	if search := strings.TrimSpace(opts.Search); search != "" {
		p := a.add("%" + search + "%")
		where = "WHERE u.full_name ILIKE " + p + " OR u.email_address ILIKE " + p
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u `+where, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := selectUser + "\n" + where + `
GROUP BY u.user_id
ORDER BY u.full_name ASC, u.user_id ASC` + limitClause(&a, opts.Limit, opts.Offset)

	rows, err := r.pool.Query(ctx, query, a...)
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
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (full_name, email_address, registration_date, updated_at)
VALUES ($1, $2, $3, $4)
RETURNING user_id`,
		user.FullName,
		user.Email,
		user.RegistrationDate.UTC(),
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET full_name = $1, email_address = $2, updated_at = $3
WHERE user_id = $4`,
		user.FullName,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w", domain.ErrDuplicateEmail)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email_address = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		updatedAt *time.Time
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.RegistrationDate = user.RegistrationDate.UTC()
	if updatedAt != nil {
		t := updatedAt.UTC()
		user.UpdatedAt = &t
	}
	return &user, nil
}
