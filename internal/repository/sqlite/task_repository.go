package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"usertask-manager/internal/domain"
	"usertask-manager/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	task_id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_description TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	creation_date DATETIME NOT NULL,
	updated_at DATETIME NULL,
	completion_date DATETIME NULL,
	user_id INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(user_id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id_is_completed ON tasks(user_id, is_completed);
`

const selectTask = `
SELECT t.task_id, t.task_description, t.is_completed, t.creation_date, t.updated_at, t.completion_date, t.user_id, u.full_name
FROM tasks t
JOIN users u ON u.user_id = t.user_id`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTask+`
WHERE t.task_id=?`,
		id,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByUserID(ctx context.Context, userID int64, opts repository.ListOptions) ([]domain.Task, int, error) {
	conds := []string{"t.user_id = ?"}
	args := []any{userID}
	switch opts.Status {
	case domain.TaskStatusCompleted:
		conds = append(conds, "t.is_completed = 1")
	case domain.TaskStatusPending:
		conds = append(conds, "t.is_completed = 0")
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		conds = append(conds, "t.task_description LIKE ?")
		args = append(args, "%"+search+"%")
	}
	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks t `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectTask+`
`+where+`
ORDER BY t.creation_date DESC, t.task_id DESC
LIMIT ? OFFSET ?`,
		append(args, limitArg(opts.Limit), opts.Offset)...,
	)
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
	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (task_description, is_completed, creation_date, updated_at, completion_date, user_id)
VALUES (?, ?, ?, ?, ?, ?)`,
		task.Description,
		task.IsCompleted,
		task.CreationDate.UTC(),
		nullTime(task.UpdatedAt),
		nullTime(task.CompletionDate),
		task.UserID,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return 0, fmt.Errorf("insert task: %w", domain.ErrOwnerNotFound)
		}
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reload task: %w", err)
	}
	*task = *created
	return id, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET task_description=?, is_completed=?, updated_at=?, completion_date=?
WHERE task_id=?`,
		task.Description,
		task.IsCompleted,
		nullTime(task.UpdatedAt),
		nullTime(task.CompletionDate),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task update rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id=?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task delete rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *TaskRepository) CountCompletedByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM tasks
WHERE user_id = ? AND is_completed = 1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return count, nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task           domain.Task
		updatedAt      sql.NullTime
		completionDate sql.NullTime
	)

	if err := scanner.Scan(
		&task.ID,
		&task.Description,
		&task.IsCompleted,
		&task.CreationDate,
		&updatedAt,
		&completionDate,
		&task.UserID,
		&task.UserFullName,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.CreationDate = task.CreationDate.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		task.UpdatedAt = &t
	}
	if completionDate.Valid {
		t := completionDate.Time.UTC()
		task.CompletionDate = &t
	}

	return &task, nil
}
