package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	LLM      LLMConfig
	Registry RegistryConfig
	Extract  ExtractConfig
	Fetcher  FetcherConfig
	Research ResearchConfig
	Queue    QueueConfig
	CORS     CORSConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds settings for the OCR staging bucket.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LLMConfig holds chat completion provider settings.
type LLMConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Endpoint        string        `mapstructure:"endpoint"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BackoffStep     time.Duration `mapstructure:"backoff_step"`
	TimeoutSecs     int           `mapstructure:"timeout_secs"`
	TokensPerMinute int           `mapstructure:"tokens_per_minute"`
}

// RegistryConfig holds patent registry API settings. The API key is required
// configuration; there is no compiled-in fallback.
type RegistryConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	PageSize    int    `mapstructure:"page_size"`
}

// ExtractConfig holds OCR text-detection job settings. The poll policy lives
// here rather than as literals in the adapter.
type ExtractConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxPolls      int           `mapstructure:"max_polls"`
	StagingPrefix string        `mapstructure:"staging_prefix"`
}

// FetcherConfig holds document fetcher settings.
type FetcherConfig struct {
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
	ReaderBaseURL string        `mapstructure:"reader_base_url"`
}

// ResearchConfig holds competitor research pipeline settings.
type ResearchConfig struct {
	MaxPatents      int `mapstructure:"max_patents"`
	MaxProductLinks int `mapstructure:"max_product_links"`
	PageTextCap     int `mapstructure:"page_text_cap"`
}

// QueueConfig holds research queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds analysis alert email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the PATDET_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PATDET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "patdet")
	v.SetDefault("db.password", "patdet_secret")
	v.SetDefault("db.name", "patdet_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "patent-detector")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "patdet-ocr-staging")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// LLM defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.endpoint", "https://api.anthropic.com/v1/messages")
	v.SetDefault("llm.max_retries", 4)
	v.SetDefault("llm.backoff_step", "30s")
	v.SetDefault("llm.timeout_secs", 300)
	v.SetDefault("llm.tokens_per_minute", 40000)

	// Registry defaults
	v.SetDefault("registry.base_url", "https://api.uspto.gov")
	v.SetDefault("registry.api_key", "")
	v.SetDefault("registry.timeout_secs", 30)
	v.SetDefault("registry.page_size", 25)

	// Extract defaults (5s interval x 60 polls = 5 minute ceiling)
	v.SetDefault("extract.poll_interval", "5s")
	v.SetDefault("extract.max_polls", 60)
	v.SetDefault("extract.staging_prefix", "staging")

	// Fetcher defaults
	v.SetDefault("fetcher.verify_timeout", "8s")
	v.SetDefault("fetcher.fetch_timeout", "30s")
	v.SetDefault("fetcher.user_agent", "patent-detector/1.0")
	v.SetDefault("fetcher.max_body_bytes", 5242880)
	v.SetDefault("fetcher.reader_base_url", "https://r.jina.ai")

	// Research defaults
	v.SetDefault("research.max_patents", 15)
	v.SetDefault("research.max_product_links", 10)
	v.SetDefault("research.page_text_cap", 5000)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 2)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "alerts@patent-detector.local")
	v.SetDefault("email.from_name", "Patent Detector")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "PATDET_SERVER_PORT",
		"server.read_timeout":        "PATDET_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "PATDET_SERVER_WRITE_TIMEOUT",
		"server.environment":         "PATDET_SERVER_ENVIRONMENT",
		"db.host":                    "PATDET_DB_HOST",
		"db.port":                    "PATDET_DB_PORT",
		"db.user":                    "PATDET_DB_USER",
		"db.password":                "PATDET_DB_PASSWORD",
		"db.name":                    "PATDET_DB_NAME",
		"db.sslmode":                 "PATDET_DB_SSLMODE",
		"db.max_open":                "PATDET_DB_MAX_OPEN",
		"db.max_idle":                "PATDET_DB_MAX_IDLE",
		"jwt.secret":                 "PATDET_JWT_SECRET",
		"jwt.access_expiry":          "PATDET_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "PATDET_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "PATDET_JWT_ISSUER",
		"s3.region":                  "PATDET_S3_REGION",
		"s3.bucket":                  "PATDET_S3_BUCKET",
		"s3.endpoint":                "PATDET_S3_ENDPOINT",
		"s3.access_key":              "PATDET_S3_ACCESS_KEY",
		"s3.secret_key":              "PATDET_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "PATDET_S3_MAX_FILE_SIZE_MB",
		"log.level":                  "PATDET_LOG_LEVEL",
		"log.format":                 "PATDET_LOG_FORMAT",
		"llm.api_key":                "PATDET_LLM_API_KEY",
		"llm.model":                  "PATDET_LLM_MODEL",
		"llm.endpoint":               "PATDET_LLM_ENDPOINT",
		"llm.max_retries":            "PATDET_LLM_MAX_RETRIES",
		"llm.backoff_step":           "PATDET_LLM_BACKOFF_STEP",
		"llm.timeout_secs":           "PATDET_LLM_TIMEOUT_SECS",
		"llm.tokens_per_minute":      "PATDET_LLM_TOKENS_PER_MINUTE",
		"registry.base_url":          "PATDET_REGISTRY_BASE_URL",
		"registry.api_key":           "PATDET_REGISTRY_API_KEY",
		"registry.timeout_secs":      "PATDET_REGISTRY_TIMEOUT_SECS",
		"registry.page_size":         "PATDET_REGISTRY_PAGE_SIZE",
		"extract.poll_interval":      "PATDET_EXTRACT_POLL_INTERVAL",
		"extract.max_polls":          "PATDET_EXTRACT_MAX_POLLS",
		"extract.staging_prefix":     "PATDET_EXTRACT_STAGING_PREFIX",
		"fetcher.verify_timeout":     "PATDET_FETCHER_VERIFY_TIMEOUT",
		"fetcher.fetch_timeout":      "PATDET_FETCHER_FETCH_TIMEOUT",
		"fetcher.user_agent":         "PATDET_FETCHER_USER_AGENT",
		"fetcher.max_body_bytes":     "PATDET_FETCHER_MAX_BODY_BYTES",
		"fetcher.reader_base_url":    "PATDET_FETCHER_READER_BASE_URL",
		"research.max_patents":       "PATDET_RESEARCH_MAX_PATENTS",
		"research.max_product_links": "PATDET_RESEARCH_MAX_PRODUCT_LINKS",
		"research.page_text_cap":     "PATDET_RESEARCH_PAGE_TEXT_CAP",
		"queue.poll_interval_secs":   "PATDET_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":          "PATDET_QUEUE_MAX_RETRIES",
		"queue.concurrency":          "PATDET_QUEUE_CONCURRENCY",
		"cors.allowed_origins":       "PATDET_CORS_ALLOWED_ORIGINS",
		"email.provider":             "PATDET_EMAIL_PROVIDER",
		"email.region":               "PATDET_EMAIL_REGION",
		"email.from_address":         "PATDET_EMAIL_FROM_ADDRESS",
		"email.from_name":            "PATDET_EMAIL_FROM_NAME",
		"email.frontend_url":         "PATDET_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PATDET_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PATDET_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.LLM = LLMConfig{
		APIKey:          v.GetString("llm.api_key"),
		Model:           v.GetString("llm.model"),
		Endpoint:        v.GetString("llm.endpoint"),
		MaxRetries:      v.GetInt("llm.max_retries"),
		BackoffStep:     v.GetDuration("llm.backoff_step"),
		TimeoutSecs:     v.GetInt("llm.timeout_secs"),
		TokensPerMinute: v.GetInt("llm.tokens_per_minute"),
	}
	cfg.Registry = RegistryConfig{
		BaseURL:     v.GetString("registry.base_url"),
		APIKey:      v.GetString("registry.api_key"),
		TimeoutSecs: v.GetInt("registry.timeout_secs"),
		PageSize:    v.GetInt("registry.page_size"),
	}
	cfg.Extract = ExtractConfig{
		PollInterval:  v.GetDuration("extract.poll_interval"),
		MaxPolls:      v.GetInt("extract.max_polls"),
		StagingPrefix: v.GetString("extract.staging_prefix"),
	}
	cfg.Fetcher = FetcherConfig{
		VerifyTimeout: v.GetDuration("fetcher.verify_timeout"),
		FetchTimeout:  v.GetDuration("fetcher.fetch_timeout"),
		UserAgent:     v.GetString("fetcher.user_agent"),
		MaxBodyBytes:  v.GetInt64("fetcher.max_body_bytes"),
		ReaderBaseURL: v.GetString("fetcher.reader_base_url"),
	}
	cfg.Research = ResearchConfig{
		MaxPatents:      v.GetInt("research.max_patents"),
		MaxProductLinks: v.GetInt("research.max_product_links"),
		PageTextCap:     v.GetInt("research.page_text_cap"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
