package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Buffer      BufferConfig
	Monitor     MonitorConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// StoreConfig selects the repository backend. The memory driver keeps all
// state in process and needs neither Postgres nor Redis.
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// BufferConfig tunes the local write-behind queue used with the postgres
// driver.
type BufferConfig struct {
	Path         string
	Retention    time.Duration
	SyncInterval time.Duration
	MaxRetry     int
	BatchSize    int
}

type MonitorConfig struct {
	Interval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	// Path overrides the migrations embedded in the binary when set.
	Path string
}

// Load reads configuration from environment variables, with an optional
// .env file filling in keys the environment leaves unset. Malformed values
// are reported rather than silently replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var env reader
	cfg := &Config{
		AppName:     env.str("APP_NAME", "bms-backend"),
		Environment: env.str("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         env.str("SERVER_HOST", "0.0.0.0"),
			Port:         env.str("SERVER_PORT", "8080"),
			ReadTimeout:  env.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: env.duration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  env.duration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      env.integer("SERVER_MAX_CONN", 0),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(env.str("STORE_DRIVER", StoreDriverPostgres)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            env.str("DB_HOST", "localhost"),
			Port:            env.str("DB_PORT", "5432"),
			Name:            env.str("DB_NAME", "bms"),
			User:            env.str("DB_USER", "bms"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.integer("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: env.duration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         env.str("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      env.str("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       env.integer("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: env.str("JWT_ISSUER", "bms-backend"),
			TTL:    env.duration("JWT_TTL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   env.number("RATE_LIMIT_RPS", 5),
			Burst: env.integer("RATE_LIMIT_BURST", 10),
		},
		Buffer: BufferConfig{
			Path:         env.str("BOLTDB_PATH", "./data/buffer.db"),
			Retention:    time.Duration(env.integer("BUFFER_RETENTION_HOURS", 24)) * time.Hour,
			SyncInterval: env.duration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:     env.integer("MAX_RETRY_ATTEMPTS", 3),
			BatchSize:    env.integer("BUFFER_BATCH_SIZE", 50),
		},
		Monitor: MonitorConfig{
			Interval: env.duration("MONITOR_INTERVAL", 10*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  env.duration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    strings.ToLower(env.str("LOG_LEVEL", "info")),
			Encoding: strings.ToLower(env.str("LOG_ENCODING", "json")),
		},
		Migrations: MigrationsConfig{
			Enabled: env.boolean("RUN_MIGRATIONS", true),
			Path:    os.Getenv("MIGRATIONS_PATH"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = cfg.Database.DSN()
	}

	if err := errors.Join(errors.Join(env.errs...), cfg.Validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Buffer.Path == "" {
			errs = append(errs, errors.New("BOLTDB_PATH is required with the postgres driver"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of postgres, memory", c.Store.Driver))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logger.Level))
	}
	if c.Logger.Encoding != "json" && c.Logger.Encoding != "console" {
		errs = append(errs, fmt.Errorf("LOG_ENCODING %q is not one of json, console", c.Logger.Encoding))
	}
	return errors.Join(errs...)
}

// DSN builds a postgres connection string from the discrete settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTP.Host, c.HTTP.Port)
}

// reader looks up typed environment values and remembers malformed ones.
type reader struct {
	errs []error
}

func (r *reader) lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	return val, ok && val != ""
}

func (r *reader) fail(key, val, kind string) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q is not a valid %s", key, val, kind))
}

func (r *reader) str(key, fallback string) string {
	if val, ok := r.lookup(key); ok {
		return val
	}
	return fallback
}

func (r *reader) integer(key string, fallback int) int {
	val, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.fail(key, val, "integer")
		return fallback
	}
	return parsed
}

func (r *reader) number(key string, fallback float64) float64 {
	val, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		r.fail(key, val, "number")
		return fallback
	}
	return parsed
}

func (r *reader) boolean(key string, fallback bool) bool {
	val, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.fail(key, val, "boolean")
		return fallback
	}
	return parsed
}

// duration accepts Go duration syntax or a bare number of seconds.
func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	val, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}
	r.fail(key, val, "duration")
	return fallback
}
