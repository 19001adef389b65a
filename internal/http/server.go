package http

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/http/handler"
	"storefront/internal/http/middleware"
	"storefront/internal/observability"
	"storefront/internal/rbac"
	"storefront/internal/repository"
	"storefront/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	jsonKeyStatus = "status"
	statusOK      = "ok"
)

type ServerDependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Users    repository.UserStore
	Checker  *rbac.Checker
	Tokens   *auth.TokenService
	Resolver *auth.Resolver
	Metrics  *metrics.Metrics
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	cfg := deps.Config
	logger := deps.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	paths := auth.Paths{
		LoginPath:   cfg.Gate.LoginPath,
		AdminPrefix: cfg.Gate.AdminPrefix,
		AdminHome:   cfg.Gate.AdminHome,
	}
	gate := auth.NewGate(paths, deps.Resolver, logger, deps.Metrics)
	perms := auth.NewPermissions(deps.Resolver, deps.Checker, cfg.Authz.DiscloseDenialDetail, logger, deps.Metrics)

	// Request id first so every log line carries it. The gate runs last.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		DisablePrintStack: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(echomiddleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(deps.Metrics.Middleware())
	e.Use(gate.Middleware())

	loginLimiter := middleware.NewLoginRateLimiter(cfg.RateLimit)

	authHandler := handler.NewAuthHandler(deps.Users, deps.Tokens, deps.Resolver, deps.Checker, logger)
	usersHandler := handler.NewUsersHandler(deps.Users, deps.Checker, logger)
	adminHandler := handler.NewAdminHandler(deps.Checker)

	e.GET("/health", healthCheck)

	e.POST("/api/auth/login", authHandler.Login, loginLimiter.Middleware())
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/auth/session", authHandler.Session)

	api := e.Group("/api")
	api.GET("/users", usersHandler.List, perms.Require(rbac.ActionManageUsers))
	api.PUT("/users/:id/role", usersHandler.UpdateRole, perms.Require(rbac.ActionManageUsers))

	e.GET(paths.LoginPath, adminHandler.LoginPage)

	admin := e.Group(paths.AdminPrefix)
	admin.GET("/metrics", deps.Metrics.Handler, perms.Require(rbac.ActionManageSettings))
	if cfg.Server.EnableProfiling {
		observability.RegisterProfilingRoutes(admin, perms.Require(rbac.ActionManageSettings))
	}
	admin.GET("", adminHandler.Dashboard, perms.Require(rbac.ActionViewDashboard))
	admin.GET("/*", adminHandler.Dashboard, perms.Require(rbac.ActionViewDashboard))

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.deps.Config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
