package auth

import (
	"errors"
	"net/http"

	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DenialBody is the JSON error body. Required and UserRole are only set
// when denial detail disclosure is enabled.
type DenialBody struct {
	Error    string `json:"error"`
	Required string `json:"required,omitempty"`
	UserRole string `json:"userRole,omitempty"`
}

// Denial is a response the caller must write instead of proceeding.
type Denial struct {
	Status int
	Body   DenialBody
}

type Permissions struct {
	resolver IdentityResolver
	checker  *rbac.Checker
	disclose bool
	logger   *zap.Logger
	recorder Recorder
}

func NewPermissions(resolver IdentityResolver, checker *rbac.Checker, discloseDetail bool, logger *zap.Logger, recorder Recorder) *Permissions {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Permissions{
		resolver: resolver,
		checker:  checker,
		disclose: discloseDetail,
		logger:   logger,
		recorder: recorder,
	}
}

// Check resolves the caller and evaluates action. It returns nil when the
// request may proceed, and stores the identity in the context.
func (p *Permissions) Check(c echo.Context, action rbac.Action) *Denial {
	req := c.Request()

	identity, err := p.resolver.Resolve(req.Context(), req)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			p.recorder.Record(DecisionFault)
			p.logger.Error("identity resolution failed",
				zap.String(logKeyRequestID, requestID(c)),
				zap.String(logKeyAction, string(action)),
				zap.Error(err))
			return &Denial{
				Status: http.StatusInternalServerError,
				Body:   DenialBody{Error: msgInternalServerError},
			}
		}

		p.recorder.Record(DecisionUnauthorized)
		p.logger.Debug("unauthenticated",
			zap.String(logKeyRequestID, requestID(c)),
			zap.String(logKeyAction, string(action)),
			zap.Error(err))
		return &Denial{
			Status: http.StatusUnauthorized,
			Body:   DenialBody{Error: msgUnauthorized},
		}
	}

	if err := p.checker.Authorize(identity.Role, action); err != nil {
		p.recorder.Record(DecisionForbidden)
		p.logger.Info("permission denied",
			zap.String(logKeyRequestID, requestID(c)),
			zap.String(logKeyUserID, identity.ID.String()),
			zap.Error(err))

		body := DenialBody{Error: msgForbidden}
		if p.disclose {
			body.Required = string(action)
			body.UserRole = identity.Role.String()
		}
		return &Denial{Status: http.StatusForbidden, Body: body}
	}

	p.recorder.Record(DecisionAllowed)
	SetIdentity(c, identity)
	return nil
}

// Require guards a route with action.
func (p *Permissions) Require(action rbac.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if denial := p.Check(c, action); denial != nil {
				return c.JSON(denial.Status, denial.Body)
			}
			return next(c)
		}
	}
}
