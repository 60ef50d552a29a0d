package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	AMQP         AMQPConfig
	Cache        CacheConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `envconfig:"APP_NAME" default:"medcourse-service"`
	Env                   string `envconfig:"APP_ENV" default:"development"`
	Host                  string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port                  string `envconfig:"APP_PORT" default:"8080"`
	Version               string `envconfig:"APP_VERSION" default:"dev"`
	RequestTimeoutSeconds int    `envconfig:"HTTP_REQUEST_TIMEOUT_SECONDS" default:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `envconfig:"POSTGRES_DSN"`
	MaxConns       int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	MinConns       int32  `envconfig:"POSTGRES_MIN_CONNS" default:"2"`
	RunMigrations  bool   `envconfig:"POSTGRES_RUN_MIGRATIONS" default:"true"`
	ConnMaxIdleSec int32  `envconfig:"POSTGRES_CONN_MAX_IDLE_SECONDS" default:"30"`
	ConnMaxLifeSec int32  `envconfig:"POSTGRES_CONN_MAX_LIFE_SECONDS" default:"300"`
	TxMaxAttempts  int    `envconfig:"POSTGRES_TX_MAX_ATTEMPTS" default:"3"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AMQPConfig holds optional RabbitMQ settings. The broker is only used when URL is set.
type AMQPConfig struct {
	URL      string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"AMQP_EXCHANGE" default:"medcourse.events"`
	Queue    string `envconfig:"AMQP_NOTIFY_QUEUE" default:"medcourse.notifications"`
}

// CacheConfig controls the in-memory query cache.
type CacheConfig struct {
	Capacity           int `envconfig:"CACHE_CAPACITY" default:"10000"`
	NumShards          int `envconfig:"CACHE_NUM_SHARDS" default:"64"`
	TTLSeconds         int `envconfig:"CACHE_TTL_SECONDS" default:"120"`
	EvictionPercentage int `envconfig:"CACHE_EVICTION_PERCENTAGE" default:"10"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `envconfig:"AUTH_JWT_SECRET" default:"dev-secret"`
	AccessTokenTTLMinutes int    `envconfig:"AUTH_ACCESS_TOKEN_TTL_MINUTES" default:"60"`
	BcryptCost            int    `envconfig:"AUTH_BCRYPT_COST" default:"12"`
}

// NotificationConfig holds stub notification sender settings.
type NotificationConfig struct {
	EmailFrom string `envconfig:"NOTIFY_EMAIL_FROM" default:"noreply@example.com"`
}

// Load reads configuration from the environment, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
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

// TTL returns the default cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// Enabled reports whether the AMQP integration should be started.
func (a AMQPConfig) Enabled() bool {
	return a.URL != ""
}
