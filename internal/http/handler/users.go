package handler

import (
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/user"
	"storefront/internal/rbac"
	"storefront/internal/repository"
	apperrors "storefront/pkg/errors"
	"storefront/pkg/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UsersHandler struct {
	store   repository.UserStore
	checker *rbac.Checker
	logger  *zap.Logger
}

func NewUsersHandler(store repository.UserStore, checker *rbac.Checker, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{store: store, checker: checker, logger: logger}
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,staff_role"`
}

const tagStaffRole = "staff_role"

func init() {
	if err := validator.Register(tagStaffRole, func(fl govalidator.FieldLevel) bool {
		_, err := rbac.ParseRole(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
}

func (h *UsersHandler) List(c echo.Context) error {
	users, err := h.store.List(c.Request().Context())
	if err != nil {
		return RespondWithMappedError(c, h.logger, err, msgListUsersFail)
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UsersHandler) UpdateRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return RespondWithMappedError(c, h.logger, apperrors.BadRequest(msgInvalidUserID), msgUpdateRoleFail)
	}

	var req UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleBindError(c, err)
	}

	role, err := h.checker.ValidateRole(req.Role)
	if err != nil {
		return RespondWithMappedError(c, h.logger, apperrors.Validation(err.Error()), msgUpdateRoleFail)
	}

	// Callers may not change their own role.
	if caller, ok := auth.GetIdentity(c); ok && caller.ID == id {
		return RespondWithMappedError(c, h.logger, apperrors.Conflict(msgCannotChangeOwnRole), msgUpdateRoleFail)
	}

	ctx := c.Request().Context()
	if err := h.store.UpdateRole(ctx, user.UpdateRoleInput{ID: id, Role: role}); err != nil {
		return RespondWithMappedError(c, h.logger, err, msgUpdateRoleFail)
	}

	updated, err := h.store.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, h.logger, err, msgUpdateRoleFail)
	}

	h.logger.Info("role changed",
		zap.String(logKeyRequestID, requestID(c)),
		zap.String(logKeyUserID, id.String()),
		zap.Stringer("role", role))

	return c.JSON(http.StatusOK, toUserResponse(updated))
}
