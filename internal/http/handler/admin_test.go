package handler

import (
	"net/http"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/rbac"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv()
	h := NewAdminHandler(env.checker)

	c, rec := newJSONContext(http.MethodGet, "/admin/orders", "")
	auth.SetIdentity(c, &auth.Identity{ID: uuid.New(), Email: "agent@example.com", Role: rbac.RoleAgent})
	c.Set(auth.ContextKeyPathname, "/admin/orders")

	require.NoError(t, h.Dashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body DashboardResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "/admin/orders", body.Path)
	assert.Equal(t, rbac.RoleAgent, body.User.Role)
	assert.Contains(t, body.Grants, rbac.ActionManageSupportChat)
}

func TestDashboard_WithoutIdentity(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/admin", "")

	require.NoError(t, NewAdminHandler(newTestEnv().checker).Dashboard(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginPage(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/admin-login", "")

	require.NoError(t, NewAdminHandler(newTestEnv().checker).LoginPage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
