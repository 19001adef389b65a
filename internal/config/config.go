package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envServerBodyLimit       = "SERVER_BODY_LIMIT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envSessionSecret         = "SESSION_SECRET"
	envSessionCookieName     = "SESSION_COOKIE_NAME"
	envSessionTTL            = "SESSION_TTL"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envSessionIssuer         = "SESSION_ISSUER"
	envGateLoginPath         = "GATE_LOGIN_PATH"
	envGateAdminPrefix       = "GATE_ADMIN_PREFIX"
	envGateAdminHome         = "GATE_ADMIN_HOME"
	envAuthzDiscloseDetail   = "AUTHZ_DISCLOSE_DENIAL_DETAIL"
	envRateLimitLoginRPS     = "RATE_LIMIT_LOGIN_RPS"
	envRateLimitLoginBurst   = "RATE_LIMIT_LOGIN_BURST"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
	envBootstrapEmail        = "ADMIN_BOOTSTRAP_EMAIL"
	envBootstrapName         = "ADMIN_BOOTSTRAP_NAME"
	envBootstrapPasswordHash = "ADMIN_BOOTSTRAP_PASSWORD_HASH"
	envBootstrapRole         = "ADMIN_BOOTSTRAP_ROLE"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultServerBodyLimit    = "1M"
	defaultDBPort             = 5432
	defaultDBName             = "storefront"
	defaultDBUser             = "storefront_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultSessionCookieName  = "session"
	defaultSessionTTL         = 12 * time.Hour
	defaultSessionIssuer      = "storefront"
	defaultGateLoginPath      = "/admin-login"
	defaultGateAdminPrefix    = "/admin"
	defaultGateAdminHome      = "/admin"
	defaultLoginRPS           = 0.2
	defaultLoginBurst         = 5
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
	defaultBootstrapName      = "Administrator"
	defaultBootstrapRole      = "admin"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"

	minSessionSecretLength   = 32
	minUniqueCharsInSecret   = 16
	minRepeatedCharThreshold = 4
	maxRepeatedChars         = 2
)

const (
	errPortRequiredFmt            = "PORT must be set"
	errSessionSecretMinLengthFmt  = "SESSION_SECRET must be at least %d characters"
	errSessionSecretLowEntropyFmt = "SESSION_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errSessionTTLFmt              = "SESSION_TTL must be positive"
	errCookieNameRequiredFmt      = "SESSION_COOKIE_NAME must not be empty"
	errGatePathFmt                = "%s must be an absolute path, got %q"
	errGateLoopFmt                = "GATE_ADMIN_HOME must differ from GATE_LOGIN_PATH"
	errLogFormatFmt               = "LOG_FORMAT must be %q or %q, got %q"
	errRateLimitFmt               = "RATE_LIMIT_LOGIN_RPS and RATE_LIMIT_LOGIN_BURST must be positive"
	errInvalidConfigurationFmt    = "invalid configuration: %w"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Gate      GateConfig
	Authz     AuthzConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       string
	// EnableProfiling mounts pprof under the admin prefix.
	EnableProfiling bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	TTL          time.Duration
	CookieSecure bool
	Issuer       string
}

type GateConfig struct {
	LoginPath   string
	AdminPrefix string
	AdminHome   string
}

// AuthzConfig controls what a 403 tells the caller.
type AuthzConfig struct {
	DiscloseDenialDetail bool
}

type RateLimitConfig struct {
	LoginRPS   float64
	LoginBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// BootstrapConfig describes the first staff account, created at startup if absent.
type BootstrapConfig struct {
	Email        string
	Name         string
	PasswordHash string
	Role         string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			BodyLimit:       getEnv(envServerBodyLimit, defaultServerBodyLimit),
			EnableProfiling: getBoolEnv(envEnableProfiling, false),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv(envDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		Session: SessionConfig{
			Secret:       os.Getenv(envSessionSecret),
			CookieName:   getEnv(envSessionCookieName, defaultSessionCookieName),
			TTL:          getDurationEnv(envSessionTTL, defaultSessionTTL),
			CookieSecure: getBoolEnv(envSessionCookieSecure, true),
			Issuer:       getEnv(envSessionIssuer, defaultSessionIssuer),
		},
		Gate: GateConfig{
			LoginPath:   getEnv(envGateLoginPath, defaultGateLoginPath),
			AdminPrefix: getEnv(envGateAdminPrefix, defaultGateAdminPrefix),
			AdminHome:   getEnv(envGateAdminHome, defaultGateAdminHome),
		},
		Authz: AuthzConfig{
			DiscloseDenialDetail: getBoolEnv(envAuthzDiscloseDetail, true),
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   getFloatEnv(envRateLimitLoginRPS, defaultLoginRPS),
			LoginBurst: getIntEnv(envRateLimitLoginBurst, defaultLoginBurst),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: strings.ToLower(getEnv(envLogFormat, defaultLogFormat)),
		},
		Bootstrap: BootstrapConfig{
			Email:        os.Getenv(envBootstrapEmail),
			Name:         getEnv(envBootstrapName, defaultBootstrapName),
			PasswordHash: os.Getenv(envBootstrapPasswordHash),
			Role:         getEnv(envBootstrapRole, defaultBootstrapRole),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Enabled() && c.Database.Password == "" {
		return errors.New(messages.requiredWhenSet(envDBPassword, envDBHost))
	}

	if c.Session.Secret == "" {
		return errors.New(messages.requiredEnvNotSet(envSessionSecret))
	}

	if len(c.Session.Secret) < minSessionSecretLength {
		return fmt.Errorf(errSessionSecretMinLengthFmt, minSessionSecretLength)
	}

	if !hasMinimumEntropy(c.Session.Secret) {
		return fmt.Errorf(errSessionSecretLowEntropyFmt)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf(errSessionTTLFmt)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf(errCookieNameRequiredFmt)
	}

	for env, p := range map[string]string{
		envGateLoginPath:   c.Gate.LoginPath,
		envGateAdminPrefix: c.Gate.AdminPrefix,
		envGateAdminHome:   c.Gate.AdminHome,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf(errGatePathFmt, env, p)
		}
	}

	if c.Gate.AdminHome == c.Gate.LoginPath {
		return fmt.Errorf(errGateLoopFmt)
	}

	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatConsole {
		return fmt.Errorf(errLogFormatFmt, LogFormatJSON, LogFormatConsole, c.Log.Format)
	}

	if c.RateLimit.LoginRPS <= 0 || c.RateLimit.LoginBurst <= 0 {
		return fmt.Errorf(errRateLimitFmt)
	}

	if c.Bootstrap.Email != "" && c.Bootstrap.PasswordHash == "" {
		return errors.New(messages.requiredWhenSet(envBootstrapPasswordHash, envBootstrapEmail))
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minSessionSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

// Enabled reports whether a database host is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
