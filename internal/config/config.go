package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig          `yaml:"app"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Redis        RedisConfig        `yaml:"redis"`
	Logger       LoggerConfig       `yaml:"logger"`
	Auth         AuthConfig         `yaml:"auth"`
	CreditCard   CreditCardConfig   `yaml:"credit_card"`
	PhotoService PhotoServiceConfig `yaml:"photo_service"`
	Health       HealthConfig       `yaml:"health"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `yaml:"name"`
	Env                   string `yaml:"env"`
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	Version               string `yaml:"version"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	BodyLimitMB           int    `yaml:"body_limit_mb"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	RunMigrations  bool   `yaml:"run_migrations"`
	ConnMaxIdleSec int32  `yaml:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `yaml:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `yaml:"jwt_secret"`
	AccessTokenTTLMinutes int    `yaml:"access_token_ttl_minutes"`
	BcryptCost            int    `yaml:"bcrypt_cost"`
}

// CreditCardConfig drives card issuance. Amounts are minor currency units.
type CreditCardConfig struct {
	DefaultLimit int64 `yaml:"default_limit"`
	ExpYears     int   `yaml:"exp_years"`
}

// PhotoServiceConfig points at the external photo validation service.
type PhotoServiceConfig struct {
	URL            string  `yaml:"url"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
}

// HealthConfig tunes dependency checks.
type HealthConfig struct {
	CheckTimeoutSeconds int    `yaml:"check_timeout_seconds"`
	RefreshSchedule     string `yaml:"refresh_schedule"`
}

// RateLimitConfig bounds login attempts per key and window.
type RateLimitConfig struct {
	Attempts      int `yaml:"attempts"`
	WindowSeconds int `yaml:"window_seconds"`
}

// MetricsConfig names exported Prometheus series.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Defaults returns the built-in configuration used before file and env overrides.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Name:                  "credit-card-service",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "8080",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
			BodyLimitMB:           8,
		},
		Postgres: PostgresConfig{
			MaxConns:       10,
			MinConns:       2,
			RunMigrations:  true,
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			JWTSecret:             "dev-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            12,
		},
		CreditCard: CreditCardConfig{
			DefaultLimit: 20_000_00,
			ExpYears:     5,
		},
		PhotoService: PhotoServiceConfig{
			URL:            "http://127.0.0.1:8090",
			TimeoutSeconds: 2,
		},
		Health: HealthConfig{
			CheckTimeoutSeconds: 3,
			RefreshSchedule:     "@every 30s",
		},
		RateLimit: RateLimitConfig{
			Attempts:      10,
			WindowSeconds: 60,
		},
		Metrics: MetricsConfig{
			Namespace: "credit_service",
		},
	}
}

// Load reads configuration from an optional YAML file (CONFIG_PATH) and then
// environment variables, applying defaults where possible. Env always wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(cfg.Redis.DB)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	defaultLimit, err := strconv.ParseInt(getEnv("CREDIT_CARD_DEFAULT_LIMIT", strconv.FormatInt(cfg.CreditCard.DefaultLimit, 10)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CREDIT_CARD_DEFAULT_LIMIT: %w", err)
	}

	cfg.App = AppConfig{
		Name:                  getEnv("APP_NAME", cfg.App.Name),
		Env:                   getEnv("APP_ENV", cfg.App.Env),
		Host:                  getEnv("APP_HOST", cfg.App.Host),
		Port:                  getEnv("APP_PORT", cfg.App.Port),
		Version:               getEnv("APP_VERSION", cfg.App.Version),
		RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", cfg.App.RequestTimeoutSeconds),
		BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", cfg.App.BodyLimitMB),
	}
	cfg.Postgres = PostgresConfig{
		DSN:            getEnv("POSTGRES_DSN", cfg.Postgres.DSN),
		MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", int(cfg.Postgres.MaxConns))),
		MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", int(cfg.Postgres.MinConns))),
		RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", cfg.Postgres.RunMigrations),
		ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", int(cfg.Postgres.ConnMaxIdleSec))),
		ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", int(cfg.Postgres.ConnMaxLifeSec))),
	}
	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", cfg.Redis.Addr),
		Password: getEnv("REDIS_PASSWORD", cfg.Redis.Password),
		DB:       redisDB,
	}
	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Auth = AuthConfig{
		JWTSecret:             getEnv("AUTH_JWT_SECRET", cfg.Auth.JWTSecret),
		AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", cfg.Auth.AccessTokenTTLMinutes),
		BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", cfg.Auth.BcryptCost),
	}
	cfg.CreditCard = CreditCardConfig{
		DefaultLimit: defaultLimit,
		ExpYears:     getEnvAsInt("CREDIT_CARD_EXP_YEARS", cfg.CreditCard.ExpYears),
	}
	cfg.PhotoService = PhotoServiceConfig{
		URL:            getEnv("PHOTO_SERVICE_URL", cfg.PhotoService.URL),
		TimeoutSeconds: getEnvAsFloat("PHOTO_SERVICE_TIMEOUT_SECONDS", cfg.PhotoService.TimeoutSeconds),
	}
	cfg.Health = HealthConfig{
		CheckTimeoutSeconds: getEnvAsInt("HEALTH_CHECK_TIMEOUT_SECONDS", cfg.Health.CheckTimeoutSeconds),
		RefreshSchedule:     getEnv("HEALTH_REFRESH_SCHEDULE", cfg.Health.RefreshSchedule),
	}
	cfg.RateLimit = RateLimitConfig{
		Attempts:      getEnvAsInt("RATE_LIMIT_LOGIN_ATTEMPTS", cfg.RateLimit.Attempts),
		WindowSeconds: getEnvAsInt("RATE_LIMIT_LOGIN_WINDOW_SECONDS", cfg.RateLimit.WindowSeconds),
	}
	cfg.Metrics.Namespace = getEnv("METRICS_NAMESPACE", cfg.Metrics.Namespace)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.CreditCard.DefaultLimit <= 0 {
		return errors.New("credit card default limit must be positive")
	}
	if c.CreditCard.ExpYears <= 0 {
		return errors.New("credit card expiration years must be positive")
	}
	if c.PhotoService.URL == "" {
		return errors.New("photo service url required")
	}
	if c.RateLimit.Attempts <= 0 {
		return errors.New("rate limit attempts must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the outbound request timeout.
func (p PhotoServiceConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(p.TimeoutSeconds * float64(time.Second))
}

// CheckTimeout returns the per-component health check deadline.
func (h HealthConfig) CheckTimeout() time.Duration {
	if h.CheckTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(h.CheckTimeoutSeconds) * time.Second
}

// Window returns the rate limiting window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.WindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
