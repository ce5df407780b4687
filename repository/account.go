package repository

import (
	"context"

	"github.com/taskvault/backend/domain"
)

// AccountRepository stores registered user accounts keyed by email.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
