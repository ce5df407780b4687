package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskvault/backend/domain"
)

// TaskFilter scopes a listing to one owner with an optional completion
// filter. OwnerID is mandatory: every query is owner-scoped at the
// store boundary, never post-filtered.
type TaskFilter struct {
	OwnerID   uuid.UUID
	Completed *bool
}

// TaskPatch carries a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
}

// TaskRepository is the persistence contract for tasks. Every operation
// takes the owner identity and must not return or affect tasks owned by
// anyone else. Update and ToggleComplete are atomic per task: a
// concurrent operation never observes an intermediate state.
type TaskRepository interface {
	GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, owner, id uuid.UUID, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	ToggleComplete(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error)
}
