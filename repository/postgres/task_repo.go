package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	const query = `
	SELECT id, owner_id, title, description, completed, created_at, updated_at
	FROM tasks
	WHERE id = $1 AND owner_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, owner)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT id, owner_id, title, description, completed, created_at, updated_at
	FROM tasks
	WHERE owner_id = $1
	  AND ($2::boolean IS NULL OR completed = $2)
	ORDER BY created_at DESC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.OwnerID, filter.Completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.NewError(domain.ErrCodeValidation, "nil task")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, description, completed)
	VALUES ($1, $2, $3, $4, FALSE)
	RETURNING completed, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
	).Scan(&task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, owner, id uuid.UUID, patch repository.TaskPatch) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET title = COALESCE($3, title),
		description = COALESCE($4, description),
		updated_at = NOW()
	WHERE id = $1 AND owner_id = $2
	RETURNING id, owner_id, title, description, completed, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, id, owner, patch.Title, patch.Description)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ToggleComplete flips the completion flag in a single UPDATE so two
// concurrent toggles can never both apply the same stale value.
func (r *taskRepository) ToggleComplete(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET completed = NOT completed,
		updated_at = NOW()
	WHERE id = $1 AND owner_id = $2
	RETURNING id, owner_id, title, description, completed, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, id, owner)
	return scanTask(row)
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
