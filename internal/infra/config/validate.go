package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBackend(cfg, ve)
	validateChat(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateMetrics(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBackend(cfg *Config, ve *ValidationError) {
	b := cfg.Backend
	if b.BaseURL == "" {
		ve.Add("backend.base_url is required")
	} else if u, err := url.Parse(b.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("backend.base_url %q must be an absolute http(s) URL", b.BaseURL)
	}
	for name, p := range map[string]string{"chat_path": b.ChatPath, "faq_path": b.FAQPath} {
		if !strings.HasPrefix(p, "/") {
			ve.Add("backend.%s %q must start with /", name, p)
		}
	}
	if b.Timeout <= 0 {
		ve.Add("backend.timeout must be > 0")
	}
	if b.ConnTimeout < 0 {
		ve.Add("backend.conn_timeout must be >= 0")
	}
	if b.RequestsPerMinute < 0 {
		ve.Add("backend.requests_per_minute must be >= 0")
	}
	if cb := b.CircuitBreaker; cb.Enabled {
		if cb.MaxFailures == 0 {
			ve.Add("backend.circuit_breaker.max_failures must be > 0")
		}
		if cb.Timeout <= 0 {
			ve.Add("backend.circuit_breaker.timeout must be > 0")
		}
		if cb.Interval < 0 {
			ve.Add("backend.circuit_breaker.interval must be >= 0")
		}
	}
}

func validateChat(cfg *Config, ve *ValidationError) {
	if strings.TrimSpace(cfg.Chat.ErrorMessage) == "" {
		ve.Add("chat.error_message must not be empty")
	}
	for i, q := range cfg.Chat.QuickReplies {
		if strings.TrimSpace(q) == "" {
			ve.Add("chat.quick_replies[%d] must not be empty", i)
		}
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		ve.Add("logger.level %q must be one of debug, info, warn, error", cfg.Logger.Level)
	}
	switch cfg.Logger.Format {
	case "text", "json", "":
	default:
		ve.Add("logger.format %q must be text or json", cfg.Logger.Format)
	}
	switch out := cfg.Logger.Output; out {
	case "stderr", "stdout", "discard", "":
	default:
		if dir := parentDir(out); dir != "" {
			if _, err := os.Stat(dir); err != nil {
				ve.Add("logger.output directory %q does not exist", dir)
			}
		}
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter %q must be stdout or noop", cfg.Tracer.Exporter)
	}
}

func validateMetrics(cfg *Config, ve *ValidationError) {
	if !cfg.Metrics.Enabled {
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
		ve.Add("metrics.addr %q must be host:port: %v", cfg.Metrics.Addr, err)
	}
}

func parentDir(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	if i <= 0 {
		return ""
	}
	return path[:i]
}
