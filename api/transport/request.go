package transport

import (
	"github.com/google/uuid"

	"github.com/taskvault/backend/domain"
)

type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskUpdateRequest uses pointers so absent fields are distinguishable
// from fields explicitly set to an empty value.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

type TokenResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	User        domain.PublicAccount `json:"user"`
}
