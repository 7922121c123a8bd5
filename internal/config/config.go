package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Execution backends
const (
	BackendSystem  = "system"
	BackendSandbox = "sandbox"
)

// ACME clients
const (
	ACMEClientAcmeSh = "acme.sh"
	ACMEClientLego   = "lego"
)

// Lock backends
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds all configuration
type Config struct {
	Backend        string
	SandboxSeed    bool // seed demo domains on startup, sandbox only
	CommandTimeout time.Duration
	HTTPAddr       string
	HTTP           HTTPConfig
	Dirs           *DirConfig
	ACME           ACMEConfig
	Lock           LockConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Admin          AdminConfig
	Log            LogConfig
	RenewWorker    RenewWorkerConfig
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	CORSOrigins     []string
	LoginRatePerMin int
	LoginBurst      int
	ShutdownTimeout time.Duration
}

// ACMEConfig holds certificate client configuration
type ACMEConfig struct {
	Client       string // acme.sh or lego
	Email        string
	DirectoryURL string
	StateDir     string // lego account and issued resources
}

// LockConfig holds mutating-operation lock configuration
type LockConfig struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// AdminConfig holds the API administrator credentials
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Format     string // text or json
	File       string // empty logs to stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RenewWorkerConfig holds renew worker configuration
type RenewWorkerConfig struct {
	Enabled     bool
	IntervalSec int
}

// Load loads configuration from environment variables.
// If VHOSTMGR_CONFIG points at an INI file, it is loaded with environment
// variables taking precedence.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	if path := os.Getenv("VHOSTMGR_CONFIG"); path != "" {
		return LoadFromINI(path)
	}

	return build(envValue)
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	return build(getValue)
}

func build(get valueFunc) (*Config, error) {
	getInt := func(envKey, section, key string, defaultValue int) int {
		if v, err := strconv.Atoi(get(envKey, section, key, "")); err == nil {
			return v
		}
		return defaultValue
	}
	getBool := func(envKey, section, key string, defaultValue bool) bool {
		switch get(envKey, section, key, "") {
		case "1", "true":
			return true
		case "0", "false":
			return false
		}
		return defaultValue
	}

	backend := get("BACKEND", "app", "backend", BackendSystem)
	if backend != BackendSystem && backend != BackendSandbox {
		return nil, fmt.Errorf("unknown BACKEND %q (want %s or %s)", backend, BackendSystem, BackendSandbox)
	}

	dirs := newDirConfig(get, backend)

	cfg := &Config{
		Backend:        backend,
		SandboxSeed:    backend == BackendSandbox && getBool("SANDBOX_SEED", "sandbox", "seed", false),
		CommandTimeout: time.Duration(getInt("COMMAND_TIMEOUT_SEC", "app", "command_timeout_sec", 300)) * time.Second,
		HTTPAddr:       get("HTTP_ADDR", "http", "addr", ":8080"),
		Dirs:           dirs,
		HTTP: HTTPConfig{
			CORSOrigins:     splitList(get("CORS_ORIGINS", "http", "cors_origins", "*")),
			LoginRatePerMin: getInt("LOGIN_RATE_PER_MIN", "http", "login_rate_per_min", 10),
			LoginBurst:      getInt("LOGIN_BURST", "http", "login_burst", 5),
			ShutdownTimeout: time.Duration(getInt("SHUTDOWN_TIMEOUT_SEC", "http", "shutdown_timeout_sec", 10)) * time.Second,
		},
		ACME: ACMEConfig{
			Client:       get("ACME_CLIENT", "acme", "client", ACMEClientAcmeSh),
			Email:        get("ACME_EMAIL", "acme", "email", ""),
			DirectoryURL: get("ACME_DIRECTORY_URL", "acme", "directory_url", "https://acme-v02.api.letsencrypt.org/directory"),
			StateDir:     get("ACME_STATE_DIR", "acme", "state_dir", dirs.AcmeHome),
		},
		Lock: LockConfig{
			Backend: get("LOCK_BACKEND", "lock", "backend", LockLocal),
			TTL:     time.Duration(getInt("LOCK_TTL_SEC", "lock", "ttl_sec", 900)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: get("REDIS_PASS", "redis", "pass", ""),
			DB:       getInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        get("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        get("JWT_ISSUER", "jwt", "issuer", "vhostmgr"),
		},
		Admin: AdminConfig{
			Username:     get("ADMIN_USERNAME", "admin", "username", "admin"),
			PasswordHash: get("ADMIN_PASSWORD_HASH", "admin", "password_hash", ""),
		},
		Log: LogConfig{
			Level:      get("LOG_LEVEL", "log", "level", "info"),
			Format:     get("LOG_FORMAT", "log", "format", "text"),
			File:       get("LOG_FILE", "log", "file", ""),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", "log", "max_size_mb", 100),
			MaxBackups: getInt("LOG_MAX_BACKUPS", "log", "max_backups", 5),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", "log", "max_age_days", 30),
		},
		RenewWorker: RenewWorkerConfig{
			Enabled:     getBool("RENEW_WORKER_ENABLED", "renew_worker", "enabled", true),
			IntervalSec: getInt("RENEW_WORKER_INTERVAL_SEC", "renew_worker", "interval_sec", 43200),
		},
	}

	if cfg.ACME.Client != ACMEClientAcmeSh && cfg.ACME.Client != ACMEClientLego {
		return nil, fmt.Errorf("unknown ACME_CLIENT %q", cfg.ACME.Client)
	}
	if cfg.Lock.Backend != LockLocal && cfg.Lock.Backend != LockRedis {
		return nil, fmt.Errorf("unknown LOCK_BACKEND %q", cfg.Lock.Backend)
	}

	return cfg, nil
}

// ValidateAPI checks the fields the HTTP API cannot run without.
func (c *Config) ValidateAPI() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	return nil
}

// splitList parses a comma separated setting, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envValue(envKey, _, _, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}
