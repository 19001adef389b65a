package handler

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin area behind the route gate. Page rendering
// lives in the frontend; these return the data it needs.
type AdminHandler struct {
	checker *rbac.Checker
}

func NewAdminHandler(checker *rbac.Checker) *AdminHandler {
	return &AdminHandler{checker: checker}
}

type DashboardResponse struct {
	Path   string         `json:"path"`
	User   *auth.Identity `json:"user"`
	Grants []rbac.Action  `json:"grants"`
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		// The gate admits no request to the admin area without an identity.
		return respondError(c, http.StatusUnauthorized, msgUnauthorized)
	}

	path := auth.GetPathname(c)
	if path == "" {
		path = c.Request().Header.Get(auth.HeaderPathname)
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Path:   path,
		User:   identity,
		Grants: h.checker.Grants(identity.Role),
	})
}

func (h *AdminHandler) LoginPage(c echo.Context) error {
	return respondMessage(c, http.StatusOK, msgLoginPage)
}
