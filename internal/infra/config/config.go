package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hibot/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Backend  BackendConfig `yaml:"backend"`
	Chat     ChatConfig    `yaml:"chat"`
	Logger   LoggerConfig  `yaml:"logger"`
	Tracer   TracerConfig  `yaml:"tracer"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Includes []string      `yaml:"includes,omitempty"`
}

// BackendConfig holds settings for the FAQ bot HTTP endpoint.
type BackendConfig struct {
	BaseURL           string               `yaml:"base_url"`
	ChatPath          string               `yaml:"chat_path"`
	FAQPath           string               `yaml:"faq_path"`
	Timeout           time.Duration        `yaml:"timeout"`      // whole exchange
	ConnTimeout       time.Duration        `yaml:"conn_timeout"` // TCP dial
	RequestsPerMinute int                  `yaml:"requests_per_minute"` // 0 = unlimited
	CircuitBreaker    CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures fail-fast behaviour when the backend is down.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled"`
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
	// Interval clears failure counts while closed. 0 never clears.
	Interval time.Duration `yaml:"interval"`
}

// ChatConfig holds the user-facing text of the widget.
type ChatConfig struct {
	Title        string   `yaml:"title"`
	Placeholder  string   `yaml:"placeholder"`
	PendingLabel string   `yaml:"pending_label"`
	ErrorMessage string   `yaml:"error_message"`
	QuickReplies []string `yaml:"quick_replies"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"` // stderr, stdout, discard or a file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Output   string `yaml:"output"` // stdout exporter target; empty = stdout
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://localhost:8000",
			ChatPath:    "/api/chat",
			FAQPath:     "/api/faq",
			Timeout:     30 * time.Second,
			ConnTimeout: 5 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Chat: ChatConfig{
			Title:        "하이봇",
			Placeholder:  "질문을 입력하세요...",
			PendingLabel: "응답을 불러오는 중이에요...",
			ErrorMessage: "오류가 발생했습니다. 서버를 확인해주세요.",
			QuickReplies: append([]string(nil), domain.DefaultQuickReplies...),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error: defaults plus env overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfigLoad, path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path: %w", domain.ErrConfigLoad, err)
	}
	if err := validatePermissions(absPath); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
	}

	if len(cfg.Includes) > 0 {
		if err := applyIncludes(cfg, absPath); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
		}
		// The main file wins over anything it includes.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
		}
		cfg.Includes = nil
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps HIBOT_* env vars to config fields.
// Malformed numeric or duration values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HIBOT_BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("HIBOT_BACKEND_CHAT_PATH"); v != "" {
		cfg.Backend.ChatPath = v
	}
	if v := os.Getenv("HIBOT_BACKEND_FAQ_PATH"); v != "" {
		cfg.Backend.FAQPath = v
	}
	if v := os.Getenv("HIBOT_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("HIBOT_BACKEND_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Backend.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("HIBOT_BACKEND_CIRCUIT_BREAKER_ENABLED"); v != "" {
		cfg.Backend.CircuitBreaker.Enabled = v == "true"
	}
	if v := os.Getenv("HIBOT_CHAT_ERROR_MESSAGE"); v != "" {
		cfg.Chat.ErrorMessage = v
	}
	if v := os.Getenv("HIBOT_CHAT_QUICK_REPLIES"); v != "" {
		cfg.Chat.QuickReplies = splitAndTrim(v, "|")
	}
	if v := os.Getenv("HIBOT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("HIBOT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("HIBOT_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("HIBOT_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("HIBOT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("HIBOT_METRICS_ENABLED"); v == "true" {
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("HIBOT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
