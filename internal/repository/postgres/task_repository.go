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

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	task_id BIGSERIAL PRIMARY KEY,
	task_description VARCHAR(500) NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	creation_date TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NULL,
	completion_date TIMESTAMPTZ NULL,
	user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id_is_completed ON tasks(user_id, is_completed);
`

const selectTask = `
SELECT t.task_id, t.task_description, t.is_completed, t.creation_date, t.updated_at, t.completion_date, t.user_id, u.full_name
FROM tasks t
JOIN users u ON u.user_id = t.user_id`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, selectTask+`
WHERE t.task_id = $1`,
		id,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByUserID(ctx context.Context, userID int64, opts repository.ListOptions) ([]domain.Task, int, error) {
	var a args
	conds := []string{"t.user_id = " + a.add(userID)}
	switch opts.Status {
	case domain.TaskStatusCompleted:
		conds = append(conds, "t.is_completed")
	case domain.TaskStatusPending:
		conds = append(conds, "NOT t.is_completed")
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		conds = append(conds, "t.task_description ILIKE "+a.add("%"+search+"%"))
	}
	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t `+where, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := selectTask + "\n" + where + `
ORDER BY t.creation_date DESC, t.task_id DESC` + limitClause(&a, opts.Limit, opts.Offset)

	rows, err := r.pool.Query(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks by user: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, total, nil
}

// Create inserts the task and reloads it so the owner's name is populated.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO tasks (task_description, is_completed, creation_date, updated_at, completion_date, user_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING task_id`,
		task.Description,
		task.IsCompleted,
		task.CreationDate.UTC(),
		task.UpdatedAt,
		task.CompletionDate,
		task.UserID,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert task: %w", domain.ErrOwnerNotFound)
		}
		return 0, fmt.Errorf("insert task: %w", err)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reload task: %w", err)
	}
	*task = *created
	return id, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE tasks
SET task_description = $1, is_completed = $2, updated_at = $3, completion_date = $4
WHERE task_id = $5`,
		task.Description,
		task.IsCompleted,
		task.UpdatedAt,
		task.CompletionDate,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TaskRepository) CountCompletedByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM tasks
WHERE user_id = $1 AND is_completed`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return count, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task           domain.Task
		updatedAt      *time.Time
		completionDate *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Description,
		&task.IsCompleted,
		&task.CreationDate,
		&updatedAt,
		&completionDate,
		&task.UserID,
		&task.UserFullName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.CreationDate = task.CreationDate.UTC()
	if updatedAt != nil {
		t := updatedAt.UTC()
		task.UpdatedAt = &t
	}
	if completionDate != nil {
		t := completionDate.UTC()
		task.CompletionDate = &t
	}

	return &task, nil
}
