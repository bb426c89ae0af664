package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from a .env file and the environment.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Valkey   ValkeyConfig   `mapstructure:"valkey"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Port           int      `mapstructure:"port"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type S3Config struct {
	EndpointURL string `mapstructure:"endpoint_url"`
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Bucket      string `mapstructure:"bucket"`
}

// ValkeyConfig points at the query embedding cache. An empty address disables it.
type ValkeyConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig points at the worker lease store. An empty address disables the lease.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl"`
}

// AMQPConfig enables status events when URL is set.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
	EmbeddingDim      int    `mapstructure:"embedding_dim"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type WorkerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Concurrency   int           `mapstructure:"concurrency"`
	RecordTimeout time.Duration `mapstructure:"record_timeout"`
	StaleAfter    time.Duration `mapstructure:"stale_after"`
}

// TracingConfig points at an OTLP/gRPC collector. An empty endpoint disables export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Load reads an optional .env file, then the environment (with defaults).
func Load() (*Config, error) {
	// a missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.max_upload_bytes", 10<<20)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("valkey.cache_ttl", 24*time.Hour)
	v.SetDefault("redis.lease_ttl", 2*time.Minute)
	v.SetDefault("amqp.exchange", "upload_updates")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("gemini.embedding_dim", 768)
	v.SetDefault("gemini.requests_per_minute", 60)
	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.poll_interval", 10*time.Second)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.record_timeout", 5*time.Minute)
	v.SetDefault("worker.stale_after", 30*time.Minute)
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                   "API_PORT",
		"api.jwt_secret":             "JWT_SECRET",
		"api.max_upload_bytes":       "MAX_UPLOAD_BYTES",
		"api.cors_origins":           "CORS_ORIGINS",
		"database.url":               "DATABASE_URL",
		"s3.endpoint_url":            "S3_ENDPOINT_URL",
		"s3.region":                  "S3_REGION",
		"s3.access_key":              "S3_ACCESS_KEY",
		"s3.secret_key":              "S3_SECRET_KEY",
		"s3.bucket":                  "S3_BUCKET_NAME",
		"valkey.address":             "VALKEY_URL",
		"valkey.password":            "VALKEY_PASSWORD",
		"valkey.cache_ttl":           "VALKEY_CACHE_TTL",
		"redis.address":              "REDIS_ADDR",
		"redis.password":             "REDIS_PASSWORD",
		"redis.lease_ttl":            "REDIS_LEASE_TTL",
		"amqp.url":                   "RABBITMQ_URL",
		"amqp.exchange":              "RABBITMQ_EXCHANGE",
		"gemini.api_key":             "GEMINI_API_KEY",
		"gemini.model":               "GEMINI_MODEL",
		"gemini.embedding_model":     "GEMINI_EMBEDDING_MODEL",
		"gemini.embedding_dim":       "GEMINI_EMBEDDING_DIM",
		"gemini.requests_per_minute": "GEMINI_REQUESTS_PER_MINUTE",
		"worker.enabled":             "WORKER_ENABLED",
		"worker.poll_interval":       "WORKER_POLL_INTERVAL",
		"worker.concurrency":         "WORKER_CONCURRENCY",
		"worker.record_timeout":      "WORKER_RECORD_TIMEOUT",
		"worker.stale_after":         "WORKER_STALE_AFTER",
		"tracing.endpoint":           "OTEL_EXPORTER_OTLP_ENDPOINT",
		"tracing.insecure":           "OTEL_EXPORTER_OTLP_INSECURE",
		"tracing.sample_ratio":       "OTEL_TRACES_SAMPLER_RATIO",
		"log.json":                   "LOG_JSON",
		"log.debug":                  "LOG_DEBUG",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.S3.Bucket == "" {
		return errors.New("S3_BUCKET_NAME is required")
	}
	if cfg.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if cfg.Gemini.EmbeddingDim <= 0 {
		return errors.New("embedding dimension must be positive")
	}
	if cfg.Gemini.RequestsPerMinute <= 0 {
		return errors.New("gemini requests per minute must be positive")
	}
	if cfg.Worker.PollInterval <= 0 {
		return errors.New("worker poll interval must be positive")
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return errors.New("trace sample ratio must be between 0 and 1")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c *Config) ValidateAPI() error {
	if c.API.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the api")
	}
	return nil
}
