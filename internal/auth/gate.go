package auth

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteLogin
	RouteAdminProtected
)

func (rc RouteClass) String() string {
	switch rc {
	case RouteLogin:
		return "login"
	case RouteAdminProtected:
		return "admin-protected"
	default:
		return "public"
	}
}

// Paths are the routes the gate knows about.
type Paths struct {
	LoginPath   string
	AdminPrefix string
	AdminHome   string
}

var DefaultPaths = Paths{
	LoginPath:   "/admin-login",
	AdminPrefix: "/admin",
	AdminHome:   "/admin",
}

// Classify classifies a path against DefaultPaths.
func Classify(p string) RouteClass {
	return DefaultPaths.Classify(p)
}

// Classify classifies p. Only the exact login path is the login page. A path
// is admin-protected when either its raw or its cleaned form sits under the
// admin prefix, so dot segments cannot move a routed admin path out of the
// gate.
func (ps Paths) Classify(p string) RouteClass {
	if p == "" {
		p = "/"
	}
	switch {
	case p == ps.LoginPath:
		return RouteLogin
	case ps.underAdmin(p), ps.underAdmin(cleanPath(p)):
		return RouteAdminProtected
	default:
		return RoutePublic
	}
}

// classifyRequest checks both the path echo routes on and the decoded path,
// and keeps the stricter answer.
func (ps Paths) classifyRequest(req *http.Request) RouteClass {
	class := ps.Classify(echo.GetPath(req))
	if class != RouteAdminProtected && ps.Classify(req.URL.Path) == RouteAdminProtected {
		return RouteAdminProtected
	}
	return class
}

func (ps Paths) underAdmin(p string) bool {
	return p != ps.LoginPath && strings.HasPrefix(p, ps.AdminPrefix)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// Recorder counts gate and permission decisions.
type Recorder interface {
	Record(decision string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string) {}

// Gate runs before every handler and keeps unauthenticated requests out of
// the admin area.
type Gate struct {
	paths    Paths
	resolver IdentityResolver
	logger   *zap.Logger
	recorder Recorder
}

func NewGate(paths Paths, resolver IdentityResolver, logger *zap.Logger, recorder Recorder) *Gate {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Gate{
		paths:    paths,
		resolver: resolver,
		logger:   logger,
		recorder: recorder,
	}
}

func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p := cleanPath(req.URL.Path)
			class := g.paths.classifyRequest(req)

			if class == RoutePublic {
				g.recorder.Record(DecisionPassThrough)
				return next(c)
			}

			identity, err := g.resolver.Resolve(req.Context(), req)
			if err != nil && !errors.Is(err, ErrUnauthenticated) {
				g.recorder.Record(DecisionFault)
				g.logger.Error("identity resolution failed",
					zap.String(logKeyRequestID, requestID(c)),
					zap.String(logKeyPath, p),
					zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, msgInternalServerError)
			}
			if err != nil {
				g.logger.Debug("no session",
					zap.String(logKeyRequestID, requestID(c)),
					zap.String(logKeyPath, p),
					zap.Error(err))
			}

			switch class {
			case RouteLogin:
				if identity != nil {
					return g.redirect(c, p, class, g.paths.AdminHome, DecisionRedirectHome)
				}
				g.recorder.Record(DecisionPassThrough)
				return next(c)

			default:
				if identity == nil {
					return g.redirect(c, p, class, g.paths.LoginPath, DecisionRedirectLogin)
				}
				SetIdentity(c, identity)
				c.Set(ContextKeyPathname, p)
				req.Header.Set(HeaderPathname, p)

				g.recorder.Record(DecisionAdmitted)
				g.logger.Debug("admitted",
					zap.String(logKeyRequestID, requestID(c)),
					zap.String(logKeyPath, p),
					zap.String(logKeyUserID, identity.ID.String()),
					zap.Stringer(logKeyRole, identity.Role))
				return next(c)
			}
		}
	}
}

func (g *Gate) redirect(c echo.Context, p string, class RouteClass, target, decision string) error {
	g.recorder.Record(decision)
	g.logger.Debug("redirect",
		zap.String(logKeyRequestID, requestID(c)),
		zap.String(logKeyPath, p),
		zap.Stringer(logKeyClass, class),
		zap.String("location", target))

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Redirect(http.StatusTemporaryRedirect, target)
}
