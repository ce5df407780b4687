package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

type accountRepository struct {
	client *redislib.Client
	prefix string
}

// accountRecord is the stored shape. domain.Account hides the password
// hash from JSON, so persistence needs its own representation.
type accountRecord struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAccountRepository creates a Redis-backed account repository keyed
// by lowercase email.
func NewAccountRepository(client *redislib.Client) repository.AccountRepository {
	return &accountRepository{
		client: client,
		prefix: "account:",
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil || account.Email == "" {
		return domain.NewError(domain.ErrCodeValidation, "invalid account")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(accountRecord{
		ID:           account.ID,
		Email:        strings.ToLower(account.Email),
		Name:         account.Name,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	})
	if err != nil {
		return err
	}

	// SETNX makes duplicate detection atomic across concurrent signups.
	ok, err := r.client.SetNX(ctx, r.key(account.Email), payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	result, err := r.client.Get(ctx, r.key(email)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	var record accountRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

func (r *accountRepository) key(email string) string {
	return r.prefix + strings.ToLower(email)
}
