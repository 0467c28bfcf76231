// Package config loads the service configuration.
//
// Values are layered: defaults in code, then an optional YAML file
// (CONFIG_FILE or the path passed to Load), then environment variables.
// The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	// Version is reported by /health. Set at build time or via APP_VERSION.
	Version string `yaml:"version" env:"APP_VERSION"`

	Server      ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Log         LogConfig        `yaml:"log" envPrefix:"LOG_"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Fetch       FetchConfig      `yaml:"fetch" envPrefix:"FETCH_"`
	PDF         PDFConfig        `yaml:"pdf" envPrefix:"PDF_"`
	Summarizer  SummarizerConfig `yaml:"summarizer" envPrefix:"SUMMARIZER_"`
	Cache       CacheConfig      `yaml:"cache" envPrefix:"CACHE_"`
	Tracing     TracingConfig    `yaml:"tracing" envPrefix:"TRACING_"`
	Credentials Credentials      `yaml:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr" env:"ADDR" validate:"required"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`
	// RequestTimeout bounds one POST /summarize_text end to end.
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	// MaxBodyBytes caps request bodies. PDFs arrive base64-encoded, so this is
	// about 4/3 of the largest accepted PDF.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" validate:"gte=1024"`
	// StaticDir serves the pages from disk instead of the embedded copies.
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR"`
	// CSPReportOnly sends the content security policy without enforcing it.
	CSPReportOnly bool `yaml:"csp_report_only" env:"CSP_REPORT_ONLY"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=json text"`
}

// RateLimitConfig holds the per-client token bucket for POST /summarize_text.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	RPS     float64 `yaml:"rps" env:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" env:"BURST" validate:"gte=1"`
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy      bool          `yaml:"trust_proxy" env:"TRUST_PROXY"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" validate:"gt=0"`
	IdleTTL         time.Duration `yaml:"idle_ttl" env:"IDLE_TTL" validate:"gt=0"`
}

// FetchConfig holds settings for downloading user-supplied URLs.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gt=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" validate:"gte=1024,lte=104857600"`
	MaxRedirects   int           `yaml:"max_redirects" env:"MAX_REDIRECTS" validate:"gte=0,lte=10"`
	DenyPrivateIPs bool          `yaml:"deny_private_ips" env:"DENY_PRIVATE_IPS"`
	UserAgent      string        `yaml:"user_agent" env:"USER_AGENT" validate:"required"`
}

// PDFConfig holds PDF extraction settings.
type PDFConfig struct {
	// MaxPages stops extraction after this many pages; 0 means all pages.
	MaxPages int `yaml:"max_pages" env:"MAX_PAGES" validate:"gte=0"`
}

// SummarizerConfig selects the model backend and its fixed generation parameters.
type SummarizerConfig struct {
	Provider string `yaml:"provider" env:"PROVIDER" validate:"oneof=huggingface openai claude gemini noop"`
	// Model overrides the provider default (facebook/bart-large-cnn for huggingface).
	Model   string        `yaml:"model" env:"MODEL"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gt=0"`
	// RetryAttempts includes the first attempt.
	RetryAttempts int `yaml:"retry_attempts" env:"RETRY_ATTEMPTS" validate:"gte=1,lte=10"`

	InputTokens   int     `yaml:"input_tokens" env:"INPUT_TOKENS" validate:"gte=1"`
	MaxLength     int     `yaml:"max_length" env:"MAX_LENGTH" validate:"gte=1"`
	MinLength     int     `yaml:"min_length" env:"MIN_LENGTH" validate:"gte=0,ltefield=MaxLength"`
	LengthPenalty float64 `yaml:"length_penalty" env:"LENGTH_PENALTY" validate:"gt=0"`
	NumBeams      int     `yaml:"num_beams" env:"NUM_BEAMS" validate:"gte=1"`
	EarlyStopping bool    `yaml:"early_stopping" env:"EARLY_STOPPING"`
}

// CacheConfig holds the optional summary cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend" env:"BACKEND" validate:"oneof=none memory redis"`
	TTL           time.Duration `yaml:"ttl" env:"TTL" validate:"gte=0"`
	MaxEntries    int           `yaml:"max_entries" env:"MAX_ENTRIES" validate:"gte=1"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"-" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" validate:"gte=0"`
	KeyPrefix     string        `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLED"`
	ServiceName string  `yaml:"service_name" env:"SERVICE_NAME" validate:"required"`
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Credentials are read from the environment only, never from the YAML file.
type Credentials struct {
	HuggingFaceToken string `env:"HF_API_TOKEN"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "dev",
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      150 * time.Second,
			IdleTimeout:       120 * time.Second,
			RequestTimeout:    120 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			MaxBodyBytes:      25 << 20, // 25MB
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			RPS:             1,
			Burst:           10,
			CleanupInterval: 5 * time.Minute,
			IdleTTL:         10 * time.Minute,
		},
		Fetch: FetchConfig{
			Timeout:        15 * time.Second,
			MaxBodyBytes:   10 << 20, // 10MB
			MaxRedirects:   5,
			DenyPrivateIPs: true,
			UserAgent:      "ContentSummarizerBot/1.0",
		},
		Summarizer: SummarizerConfig{
			Provider:      "huggingface",
			Timeout:       90 * time.Second,
			RetryAttempts: 3,
			InputTokens:   1024,
			MaxLength:     150,
			MinLength:     40,
			LengthPenalty: 2.0,
			NumBeams:      4,
			EarlyStopping: true,
		},
		Cache: CacheConfig{
			Backend:    "none",
			TTL:        24 * time.Hour,
			MaxEntries: 1024,
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "summary:",
		},
		Tracing: TracingConfig{
			ServiceName: "content-summarizer",
			SampleRatio: 1.0,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// CONFIG_FILE when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path is provided by the operator (flag or CONFIG_FILE), not user input
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the selected provider has credentials.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Summarizer.Provider {
	case "openai":
		if c.Credentials.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SUMMARIZER_PROVIDER=openai")
		}
	case "claude":
		if c.Credentials.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when SUMMARIZER_PROVIDER=claude")
		}
	case "gemini":
		if c.Credentials.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when SUMMARIZER_PROVIDER=gemini")
		}
	}

	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Summarizer.Provider {
	case "openai":
		return c.Credentials.OpenAIAPIKey
	case "claude":
		return c.Credentials.AnthropicAPIKey
	case "gemini":
		return c.Credentials.GeminiAPIKey
	case "huggingface":
		return c.Credentials.HuggingFaceToken
	default:
		return ""
	}
}
