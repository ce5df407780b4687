package auth

import (
	"github.com/google/uuid"

	"github.com/taskvault/backend/domain"
)

// Authorize is the single authorization decision point: it denies any
// request whose caller identity differs from the target owner. The
// returned error carries a NOT_FOUND-shaped message so the transport
// layer cannot distinguish "not yours" from "does not exist".
// Must run before any store access.
func Authorize(caller *Identity, owner uuid.UUID) error {
	if caller == nil || caller.UserID != owner {
		return domain.ErrForbidden
	}
	return nil
}
