package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/domain/user"
	"storefront/internal/http"
	"storefront/internal/observability"
	"storefront/internal/rbac"
	"storefront/internal/rbac/presets"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	"storefront/internal/repository/postgres"
	"storefront/pkg/metrics"
	"storefront/pkg/password"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	envFilePath      = ".env"
	signalBufferSize = 1

	cmdServe        = "serve"
	cmdMigrate      = "migrate"
	cmdHashPassword = "hash-password"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	cmd := cmdServe
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	// hash-password needs no configuration.
	if cmd == cmdHashPassword {
		if err := hashPassword(); err != nil {
			log.Fatalf("hash-password: %v", err)
		}
		return
	}

	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	switch cmd {
	case cmdServe:
		err = serve(cfg, logger)
	case cmdMigrate:
		err = migrate(cfg, logger)
	default:
		err = fmt.Errorf("unknown command %q (want %s, %s or %s)", cmd, cmdServe, cmdMigrate, cmdHashPassword)
	}
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	checker, err := rbac.New(presets.Storefront())
	if err != nil {
		return fmt.Errorf("permission table: %w", err)
	}

	users, closeStore, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := auth.NewTokenService(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Issuer)
	resolver := auth.NewResolver(tokens, users, cfg.Session.CookieName, cfg.Session.CookieSecure)

	server := http.NewServer(&http.ServerDependencies{
		Config:   cfg,
		Logger:   logger,
		Users:    users,
		Checker:  checker,
		Tokens:   tokens,
		Resolver: resolver,
		Metrics:  metrics.New(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.Start(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.Stringer("signal", sig))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// openUserStore opens the one database pool for the process, or falls back
// to the in-memory store seeded with the bootstrap account.
func openUserStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserStore, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Warn("DB_HOST not set, using in-memory user store")
		var seed []*user.User
		if cfg.Bootstrap.Email != "" {
			role, err := rbac.ParseRole(cfg.Bootstrap.Role)
			if err != nil {
				return nil, nil, fmt.Errorf("bootstrap role: %w", err)
			}
			seed = append(seed, &user.User{
				Email:        strings.ToLower(cfg.Bootstrap.Email),
				Name:         cfg.Bootstrap.Name,
				PasswordHash: cfg.Bootstrap.PasswordHash,
				Role:         role,
			})
		}
		return memory.NewUserRepository(seed...), func() {}, nil
	}

	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established", zap.String("host", cfg.Database.Host))

	if err := prepareDatabase(ctx, db, cfg, logger); err != nil {
		db.Close()
		return nil, nil, err
	}

	return postgres.NewUserRepository(db), db.Close, nil
}

func migrate(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Database.Enabled() {
		return errors.New("migrate requires DB_HOST")
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return prepareDatabase(ctx, db, cfg, logger)
}

// prepareDatabase applies pending migrations and creates the bootstrap
// account if it does not exist yet.
func prepareDatabase(ctx context.Context, db *postgres.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("migrations applied")

	if cfg.Bootstrap.Email == "" {
		return nil
	}
	if _, err := rbac.ParseRole(cfg.Bootstrap.Role); err != nil {
		return fmt.Errorf("bootstrap role: %w", err)
	}
	if err := db.EnsureUser(ctx, strings.ToLower(cfg.Bootstrap.Email), cfg.Bootstrap.Name, cfg.Bootstrap.PasswordHash, cfg.Bootstrap.Role); err != nil {
		return err
	}
	logger.Info("bootstrap account ensured", zap.String("email", cfg.Bootstrap.Email))
	return nil
}

// hashPassword reads one line from stdin and prints its bcrypt hash, for
// ADMIN_BOOTSTRAP_PASSWORD_HASH.
func hashPassword() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return err
	}

	hash, err := password.Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
