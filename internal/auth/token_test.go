package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/domain"
)

const testSecret = "test-secret-0123456789"

func testAccount() *domain.Account {
	return &domain.Account{
		ID:    uuid.New(),
		Email: "user@example.com",
		Name:  "User",
	}
}

func TestVerifier_RoundTrip(t *testing.T) {
	account := testAccount()
	issuer := NewIssuer(testSecret, time.Hour)
	verifier := NewVerifier(testSecret)

	token, err := issuer.Issue(account)
	require.NoError(t, err)

	ident, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, ident.UserID)
	assert.Equal(t, account.Email, ident.Email)
	assert.Equal(t, account.Name, ident.Name)
	assert.False(t, ident.IssuedAt.IsZero())
	assert.True(t, ident.ExpiresAt.After(time.Now()))
}

func TestVerifier_Expired(t *testing.T) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewVerifier(testSecret).Verify(token)
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
}

func TestVerifier_Invalid(t *testing.T) {
	verifier := NewVerifier(testSecret)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "malformed",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				token, err := NewIssuer("another-secret", time.Hour).Issue(testAccount())
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   uuid.NewString(),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "subject is not a uuid",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   "alice",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token(t))
			assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
		})
	}
}
