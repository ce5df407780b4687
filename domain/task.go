package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a user-owned activity item. OwnerID is assigned at
// creation and never changes; it is the sole authorization key.
type Task struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) IsOwnedBy(owner uuid.UUID) bool {
	return t != nil && t.OwnerID == owner
}
