package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/user"
	"storefront/internal/rbac"
	apperrors "storefront/pkg/errors"
	"storefront/pkg/password"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserFinder looks up login candidates.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Sessions is the resolver surface the auth endpoints rely on.
type Sessions interface {
	auth.IdentityResolver
	SessionCookie(token string, expiresAt time.Time) *http.Cookie
	ClearedCookie() *http.Cookie
}

type AuthHandler struct {
	users    UserFinder
	tokens   *auth.TokenService
	sessions Sessions
	checker  *rbac.Checker
	logger   *zap.Logger
}

func NewAuthHandler(users UserFinder, tokens *auth.TokenService, sessions Sessions, checker *rbac.Checker, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		checker:  checker,
		logger:   logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// SessionResponse describes the signed-in user and what they may do.
type SessionResponse struct {
	User      *auth.Identity `json:"user"`
	Grants    []rbac.Action  `json:"grants"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleBindError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request().Context()

	u, err := h.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return RespondWithMappedError(c, h.logger, err, "login lookup failed")
	}

	var hash string
	if u != nil {
		hash = u.PasswordHash
	}
	// Unknown accounts still pay for one bcrypt comparison.
	if !password.VerifyOrDummy(req.Password, hash) || !u.Role.Known() {
		h.logger.Info("login rejected", zap.String(logKeyRequestID, requestID(c)))
		return RespondWithMappedError(c, h.logger, apperrors.InvalidCredentials(msgInvalidCredentials), "login rejected")
	}

	identity := auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
	token, expiresAt, err := h.tokens.Issue(identity)
	if err != nil {
		h.logger.Error("token issue failed", zap.String(logKeyRequestID, requestID(c)), zap.Error(err))
		return respondError(c, http.StatusInternalServerError, msgIssueSessionFail)
	}

	c.SetCookie(h.sessions.SessionCookie(token, expiresAt))
	h.logger.Info("login",
		zap.String(logKeyRequestID, requestID(c)),
		zap.String(logKeyUserID, u.ID.String()))

	return c.JSON(http.StatusOK, SessionResponse{
		User:      &identity,
		Grants:    h.checker.Grants(identity.Role),
		ExpiresAt: &expiresAt,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.ClearedCookie())
	return respondMessage(c, http.StatusOK, msgLoggedOut)
}

func (h *AuthHandler) Session(c echo.Context) error {
	identity, err := h.sessions.Resolve(c.Request().Context(), c.Request())
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return RespondWithMappedError(c, h.logger, apperrors.Unauthorized(msgUnauthorized), "no session")
		}
		return RespondWithMappedError(c, h.logger, err, "session lookup failed")
	}

	return c.JSON(http.StatusOK, SessionResponse{
		User:   identity,
		Grants: h.checker.Grants(identity.Role),
	})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
