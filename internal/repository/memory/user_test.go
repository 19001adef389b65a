package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/user"
	"storefront/internal/rbac"
	"storefront/internal/repository"
	apperrors "storefront/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repository.UserStore = (*UserRepository)(nil)

func TestUserRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := NewUserRepository(&user.User{ID: id, Email: "Admin@Example.com", Role: rbac.RoleAdmin})

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	u, err = repo.GetByEmail(ctx, " admin@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := NewUserRepository(&user.User{ID: id, Email: "a@example.com", Role: rbac.RoleEditor})

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	u.Role = rbac.RoleAdmin

	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleEditor, again.Role)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := NewUserRepository(&user.User{ID: id, Email: "a@example.com", Role: rbac.RoleEditor})

	require.NoError(t, repo.UpdateRole(ctx, user.UpdateRoleInput{ID: id, Role: rbac.RoleAgent}))

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAgent, u.Role)

	err = repo.UpdateRole(ctx, user.UpdateRoleInput{ID: uuid.New(), Role: rbac.RoleAgent})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	now := time.Now()
	repo := NewUserRepository(
		&user.User{Email: "old@example.com", CreatedAt: now.Add(-time.Hour)},
		&user.User{Email: "new@example.com", CreatedAt: now},
	)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "new@example.com", users[0].Email)
	assert.Equal(t, "old@example.com", users[1].Email)
}

func TestUserRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := NewUserRepository(&user.User{ID: id, Email: "a@example.com", Role: rbac.RoleEditor})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.GetByID(ctx, id)
		}()
		go func() {
			defer wg.Done()
			_ = repo.UpdateRole(ctx, user.UpdateRoleInput{ID: id, Role: rbac.RoleAgent})
		}()
	}
	wg.Wait()

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAgent, u.Role)
}
