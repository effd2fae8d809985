package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Env               string          `mapstructure:"env"`
	Port              string          `mapstructure:"port"`
	CORSAllowOrigins  string          `mapstructure:"cors_allow_origins"`
	DatabaseURL       string          `mapstructure:"database_url"`
	Store             StoreConfig     `mapstructure:"store"`
	SQLite            SQLiteConfig    `mapstructure:"sqlite"`
	LLM               LLMConfig       `mapstructure:"llm"`
	OpenAI            OpenAIConfig    `mapstructure:"openai"`
	Gemini            GeminiConfig    `mapstructure:"gemini"`
	Anthropic         AnthropicConfig `mapstructure:"anthropic"`
	Redis             RedisConfig     `mapstructure:"redis"`
	Cache             CacheConfig     `mapstructure:"cache"`
	ObjectStore       ObjectConfig    `mapstructure:"object_store"`
	S3                S3Config        `mapstructure:"s3"`
	Log               LogConfig       `mapstructure:"log"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
	ShutdownTimeoutMS int             `mapstructure:"shutdown_timeout_ms"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// SQLiteConfig configures the embedded database.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig configures the reasoning engine.
type LLMConfig struct {
	Provider       string `mapstructure:"provider"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryDelayMS   int    `mapstructure:"retry_delay_ms"`
}

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// RedisConfig configures the response cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig configures cached engine responses.
type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// ObjectConfig selects where product images are stored.
type ObjectConfig struct {
	Type     string `mapstructure:"type"`
	LocalDir string `mapstructure:"local_dir"`
}

// S3Config configures the S3 object store.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	KMSKeyID string `mapstructure:"kms_key_id"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig configures per-user throttling of chat turns.
type RateLimitConfig struct {
	ChatPerMinute int `mapstructure:"chat_per_minute"`
	ChatBurst     int `mapstructure:"chat_burst"`
}

// Load reads configuration from an optional config file and the environment.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	if isDevLike(normalizeEnv(os.Getenv("ENV"))) {
		for _, path := range []string{".env", "cmd/.env"} {
			_ = godotenv.Load(path)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "config: unmarshal")
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("port", "8080")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("database_url", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("sqlite.path", "./data/exporo.db")
	v.SetDefault("llm.provider", "placeholder")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.retry_delay_ms", 300)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("object_store.type", "local")
	v.SetDefault("object_store.local_dir", "./data/images")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.kms_key_id", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("rate_limit.chat_per_minute", 20)
	v.SetDefault("rate_limit.chat_burst", 5)
	v.SetDefault("shutdown_timeout_ms", 10000)
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.Store.Driver = normalizeDriver(c.Store.Driver, c.DatabaseURL)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.ObjectStore.Type = normalizeStoreType(c.ObjectStore.Type)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate reports configuration combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if c.DatabaseURL == "" {
			return eris.New("config: DATABASE_URL is required for the postgres store")
		}
	case "memory":
		if c.Env == "production" {
			return eris.New("config: memory store is not allowed in production")
		}
	}
	switch c.LLM.Provider {
	case "placeholder", "openai", "gemini", "anthropic":
	default:
		return eris.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	if c.ObjectStore.Type == "s3" && c.S3.Bucket == "" {
		return eris.New("config: S3_BUCKET is required for the s3 object store")
	}
	return nil
}

// AllowedOrigins splits the configured CORS origins.
func (c Config) AllowedOrigins() []string {
	return splitAndTrim(c.CORSAllowOrigins)
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return isDevLike(c.Env)
}

func isDevLike(env string) bool {
	return env == "dev" || env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// normalizeDriver picks postgres when a database URL is set and no driver was named.
func normalizeDriver(raw, databaseURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "memory", "mem":
		return "memory"
	default:
		if databaseURL != "" {
			return "postgres"
		}
		return "memory"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
