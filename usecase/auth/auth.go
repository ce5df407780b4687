package auth

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/backend/domain"
	tokens "github.com/taskvault/backend/internal/auth"
	"github.com/taskvault/backend/repository"
)

const (
	passwordMinLen = 8
	nameMaxLen     = 100
)

// UseCase handles account registration and credential exchange.
type UseCase struct {
	accounts repository.AccountRepository
	issuer   *tokens.Issuer
	logger   *zap.Logger
}

func New(accounts repository.AccountRepository, issuer *tokens.Issuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		accounts: accounts,
		issuer:   issuer,
		logger:   logger,
	}
}

// SignUp registers a new account with a bcrypt-hashed password.
func (uc *UseCase) SignUp(ctx context.Context, email, name, password string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.ErrCodeValidation, "invalid email")
	}
	if name == "" || utf8.RuneCountInString(name) > nameMaxLen {
		return nil, domain.NewError(domain.ErrCodeValidation, "name must be between 1 and 100 characters")
	}
	if len(password) < passwordMinLen {
		return nil, domain.NewError(domain.ErrCodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeDuplicateEmail) {
			return nil, err
		}
		uc.logger.Error("account store failure", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", err)
	}
	return account, nil
}

// SignIn verifies credentials and issues a signed access token. Unknown
// email and wrong password produce the same error.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		uc.logger.Error("account store failure", zap.Error(err))
		return "", nil, domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := uc.issuer.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}
