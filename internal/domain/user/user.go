package user

import (
	"time"

	"storefront/internal/rbac"

	"github.com/google/uuid"
)

// User is a staff account as held by the account store.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UpdateRoleInput struct {
	ID   uuid.UUID
	Role rbac.Role
}
