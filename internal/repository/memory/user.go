package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/user"
	apperrors "storefront/pkg/errors"

	"github.com/google/uuid"
)

const errUserNotFound = "user not found"

// UserRepository is an in-process account store for running without a
// database. It is safe for concurrent use.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository(seed ...*user.User) *UserRepository {
	r := &UserRepository{
		byID:    make(map[uuid.UUID]*user.User, len(seed)),
		byEmail: make(map[string]uuid.UUID, len(seed)),
	}
	for _, u := range seed {
		r.put(u)
	}
	return r
}

func (r *UserRepository) put(u *user.User) {
	cp := *u
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = now
	}
	r.byID[cp.ID] = &cp
	r.byEmail[normalizeEmail(cp.Email)] = cp.ID
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound(errUserNotFound)
	}
	return r.GetByID(ctx, id)
}

// List returns accounts newest first, matching the postgres store.
func (r *UserRepository) List(_ context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*user.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, input user.UpdateRoleInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[input.ID]
	if !ok {
		return apperrors.NotFound(errUserNotFound)
	}
	u.Role = input.Role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
