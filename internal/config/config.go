package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the agent processes (api, syncd).
// All values must come from env (or an env-file loaded at startup).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	API     APIConfig
	DB      DBConfig
	Redis   RedisConfig
	Context ContextConfig
	Sync    SyncConfig
	Local   LocalConfig
	Ops     OpsConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// APIConfig describes the remote DID selection service.
type APIConfig struct {
	BaseURL string
	Key     string

	// Timeout bounds a single HTTP attempt; MaxRetries and RetryDelay
	// bound the whole call: MaxRetries * (Timeout + RetryDelay).
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// FallbackDID is the caller ID substituted when selection fails.
	FallbackDID string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// ContextConfig controls the call-context correlation store.
type ContextConfig struct {
	// Backend is "file" or "redis".
	Backend  string
	CacheDir string

	// TTL bounds orphaned contexts; should exceed the max expected call duration.
	TTL time.Duration
}

type SyncConfig struct {
	BatchSize      int
	CheckpointPath string

	// DeadLetterPath is optional; empty disables the dead-letter log.
	DeadLetterPath string

	// LockTTL bounds how long a crashed pass can hold the run lock.
	LockTTL time.Duration
}

// LocalConfig guards the agent's data-plane HTTP surface (machine-to-machine).
type LocalConfig struct {
	APIKey string
}

// OpsConfig guards the operator surface with JWTs.
type OpsConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration
}

const (
	ContextBackendFile  = "file"
	ContextBackendRedis = "redis"
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.API.BaseURL = strings.TrimSpace(os.Getenv("API_BASE_URL"))
	c.API.Key = os.Getenv("API_KEY")
	c.API.Timeout = mustDuration("API_TIMEOUT")
	c.API.MaxRetries = optionalInt("API_MAX_RETRIES")
	c.API.RetryDelay = mustDuration("API_RETRY_DELAY")
	c.API.FallbackDID = strings.TrimSpace(os.Getenv("FALLBACK_DID"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Context.Backend = strings.TrimSpace(os.Getenv("CONTEXT_BACKEND"))
	c.Context.CacheDir = strings.TrimSpace(os.Getenv("CONTEXT_CACHE_DIR"))
	c.Context.TTL = mustDuration("CONTEXT_TTL")

	c.Sync.BatchSize = optionalInt("SYNC_BATCH_SIZE")
	c.Sync.CheckpointPath = strings.TrimSpace(os.Getenv("SYNC_CHECKPOINT_PATH"))
	c.Sync.DeadLetterPath = strings.TrimSpace(os.Getenv("SYNC_DEADLETTER_PATH"))
	c.Sync.LockTTL = mustDuration("SYNC_LOCK_TTL")

	c.Local.APIKey = os.Getenv("LOCAL_API_KEY")

	c.Ops.JWTSecret = os.Getenv("OPS_JWT_SECRET")
	c.Ops.JWTIssuer = strings.TrimSpace(os.Getenv("OPS_JWT_ISSUER"))
	c.Ops.JWTAudience = strings.TrimSpace(os.Getenv("OPS_JWT_AUDIENCE"))
	c.Ops.TokenTTL = mustDuration("OPS_TOKEN_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required values and applies defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}
	if c.API.Key == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if c.API.FallbackDID == "" {
		errs = append(errs, errors.New("FALLBACK_DID is required"))
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.API.MaxRetries <= 0 {
		c.API.MaxRetries = 3
	}
	if c.API.RetryDelay <= 0 {
		c.API.RetryDelay = time.Second
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Context.Backend == "" {
		c.Context.Backend = ContextBackendFile
	}
	switch c.Context.Backend {
	case ContextBackendFile:
		if c.Context.CacheDir == "" {
			errs = append(errs, errors.New("CONTEXT_CACHE_DIR is required for the file backend"))
		}
	case ContextBackendRedis:
		// Redis address is validated above.
	default:
		errs = append(errs, fmt.Errorf("CONTEXT_BACKEND must be file or redis, got %q", c.Context.Backend))
	}
	if c.Context.TTL <= 0 {
		// Must exceed the longest expected call; an hour is comfortably past it.
		c.Context.TTL = time.Hour
	}

	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = 500
	}
	if c.Sync.CheckpointPath == "" {
		errs = append(errs, errors.New("SYNC_CHECKPOINT_PATH is required"))
	}
	if c.Sync.LockTTL <= 0 {
		c.Sync.LockTTL = 5 * time.Minute
	}

	if c.Local.APIKey == "" {
		errs = append(errs, errors.New("LOCAL_API_KEY is required"))
	}

	if c.Ops.JWTSecret == "" {
		errs = append(errs, errors.New("OPS_JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Ops.JWTIssuer == "" {
			errs = append(errs, errors.New("OPS_JWT_ISSUER is required in production"))
		}
		if c.Ops.JWTAudience == "" {
			errs = append(errs, errors.New("OPS_JWT_AUDIENCE is required in production"))
		}
	}
	if c.Ops.TokenTTL <= 0 {
		c.Ops.TokenTTL = time.Hour
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optionalInt returns 0 for unset/garbage values; defaults applied in Validate.
func optionalInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
