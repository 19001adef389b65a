package auth

import (
	"storefront/internal/rbac"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Identity is the authenticated principal for one request. It is never
// persisted.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  rbac.Role `json:"role"`
}

func SetIdentity(c echo.Context, identity *Identity) {
	c.Set(ContextKeyIdentity, identity)
}

func GetIdentity(c echo.Context) (*Identity, bool) {
	identity, ok := c.Get(ContextKeyIdentity).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// GetPathname returns the admin path recorded by the gate.
func GetPathname(c echo.Context) string {
	if p, ok := c.Get(ContextKeyPathname).(string); ok {
		return p
	}
	return ""
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
