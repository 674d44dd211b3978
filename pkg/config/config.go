package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Risk     RiskConfig
	Queue    QueueConfig
	Reviewer ReviewerConfig
	Ingest   IngestConfig
	Reports  ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RiskConfig tunes the recurring-issue detector. Keywords are matched
// case-insensitively against teacher comments; a submission whose comments
// accumulate at least Threshold hits flags its repository.
type RiskConfig struct {
	Keywords  []string
	Threshold int
}

// QueueConfig governs review-queue assembly.
type QueueConfig struct {
	LegacyFilename string
}

// ReviewerConfig points at an OpenAI-compatible completion endpoint
// (a local Ollama server in the usual deployment).
type ReviewerConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// IngestConfig controls the ingestion worker pool.
type IngestConfig struct {
	Async      bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// ReportsConfig governs repo report exports and their cache.
type ReportsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	threshold := v.GetInt("RISK_THRESHOLD")
	if threshold <= 0 {
		threshold = 3
	}
	keywords := splitAndTrim(v.GetString("RISK_KEYWORDS"))
	if len(keywords) == 0 {
		keywords = []string{"memory", "leak", "edge", "case"}
	}
	cfg.Risk = RiskConfig{
		Keywords:  keywords,
		Threshold: threshold,
	}

	cfg.Queue = QueueConfig{
		LegacyFilename: v.GetString("QUEUE_LEGACY_FILENAME"),
	}

	cfg.Reviewer = ReviewerConfig{
		Enabled: v.GetBool("REVIEWER_ENABLED"),
		BaseURL: v.GetString("REVIEWER_BASE_URL"),
		APIKey:  v.GetString("REVIEWER_API_KEY"),
		Model:   v.GetString("REVIEWER_MODEL"),
		Timeout: parseDuration(v.GetString("REVIEWER_TIMEOUT"), 2*time.Minute),
	}

	cfg.Ingest = IngestConfig{
		Async:      v.GetBool("INGEST_ASYNC"),
		Workers:    v.GetInt("INGEST_WORKERS"),
		MaxRetries: v.GetInt("INGEST_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("INGEST_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Reports = ReportsConfig{
		Enabled:  v.GetBool("ENABLE_REPORTS"),
		CacheTTL: parseDuration(v.GetString("REPORTS_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "aglm_review")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RISK_KEYWORDS", "memory,leak,edge,case")
	v.SetDefault("RISK_THRESHOLD", 3)

	v.SetDefault("QUEUE_LEGACY_FILENAME", "submission.py")

	v.SetDefault("REVIEWER_ENABLED", false)
	v.SetDefault("REVIEWER_BASE_URL", "http://localhost:11434/v1")
	v.SetDefault("REVIEWER_API_KEY", "ollama")
	v.SetDefault("REVIEWER_MODEL", "ux1")
	v.SetDefault("REVIEWER_TIMEOUT", "2m")

	v.SetDefault("INGEST_ASYNC", false)
	v.SetDefault("INGEST_WORKERS", 1)
	v.SetDefault("INGEST_MAX_RETRIES", 3)
	v.SetDefault("INGEST_RETRY_DELAY", "5s")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
