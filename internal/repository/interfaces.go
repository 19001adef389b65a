package repository

import (
	"context"

	"storefront/internal/domain/user"

	"github.com/google/uuid"
)

// UserStore is the account store consumed by session resolution, login and
// user management. Lookups that find nothing return an error wrapping
// apperrors.ErrNotFound.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	UpdateRole(ctx context.Context, input user.UpdateRoleInput) error
}
