package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/domain"
	tokens "github.com/taskvault/backend/internal/auth"
	authUC "github.com/taskvault/backend/usecase/auth"
)

const testSecret = "test-secret-0123456789"

type fakeAccountRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(account.Email)
	if _, ok := r.byEmail[key]; ok {
		return domain.ErrDuplicateEmail
	}
	clone := *account
	r.byEmail[key] = &clone
	return nil
}

func (r *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func newUseCase() (*authUC.UseCase, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	issuer := tokens.NewIssuer(testSecret, time.Hour)
	return authUC.New(repo, issuer, nil), repo
}

func TestSignUp_Validation(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
	}{
		{name: "missing email", email: "", userName: "Alice", password: "password1"},
		{name: "email without at sign", email: "alice.example.com", userName: "Alice", password: "password1"},
		{name: "empty name", email: "alice@example.com", userName: "  ", password: "password1"},
		{name: "short password", email: "alice@example.com", userName: "Alice", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SignUp(ctx, tt.email, tt.userName, tt.password)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	// Email comparison is case-insensitive.
	_, err = uc.SignUp(ctx, "Alice@Example.com", "Alice", "password1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeDuplicateEmail))
}

func TestSignUp_HashesPassword(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	stored, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "password1")
}

func TestSignIn(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	account, err := uc.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := uc.SignIn(ctx, "bob@example.com", "password1")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := uc.SignIn(ctx, "alice@example.com", "password2")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("success issues verifiable token", func(t *testing.T) {
		token, signedIn, err := uc.SignIn(ctx, "alice@example.com", "password1")
		require.NoError(t, err)
		assert.Equal(t, account.ID, signedIn.ID)

		ident, err := tokens.NewVerifier(testSecret).Verify(token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, ident.UserID)
		assert.Equal(t, "alice@example.com", ident.Email)
	})
}
