package config

import (
	"strings"
	"testing"
)

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

func TestValidateDefaultsPass(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Defaults should pass validation: %v", err)
	}
}

func TestValidateBackend(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty base url", func(c *Config) { c.Backend.BaseURL = "" }, "backend.base_url is required"},
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "localhost:8000" }, "must be an absolute http(s) URL"},
		{"chat path", func(c *Config) { c.Backend.ChatPath = "api/chat" }, "backend.chat_path"},
		{"faq path", func(c *Config) { c.Backend.FAQPath = "" }, "backend.faq_path"},
		{"timeout", func(c *Config) { c.Backend.Timeout = 0 }, "backend.timeout must be > 0"},
		{"rpm", func(c *Config) { c.Backend.RequestsPerMinute = -1 }, "backend.requests_per_minute must be >= 0"},
		{"breaker failures", func(c *Config) { c.Backend.CircuitBreaker.MaxFailures = 0 }, "max_failures must be > 0"},
		{"breaker timeout", func(c *Config) { c.Backend.CircuitBreaker.Timeout = 0 }, "circuit_breaker.timeout must be > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			assertContains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateDisabledBreakerSkipsChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.CircuitBreaker = CircuitBreakerConfig{Enabled: false}
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled breaker should not be validated: %v", err)
	}
}

func TestValidateChat(t *testing.T) {
	cfg := Defaults()
	cfg.Chat.ErrorMessage = "  "
	cfg.Chat.QuickReplies = []string{"ok", ""}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "chat.error_message must not be empty")
	assertContains(t, err.Error(), "chat.quick_replies[1] must not be empty")
}

func TestValidateEmptyCatalogAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.Chat.QuickReplies = nil
	if err := Validate(cfg); err != nil {
		t.Fatalf("empty catalog should be valid: %v", err)
	}
}

func TestValidateLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "verbose"
	cfg.Logger.Format = "xml"
	cfg.Logger.Output = "/definitely/not/here/hibot.log"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "logger.level")
	assertContains(t, err.Error(), "logger.format")
	assertContains(t, err.Error(), "does not exist")
}

func TestValidateLoggerDiscard(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Output = "discard"
	if err := Validate(cfg); err != nil {
		t.Fatalf("discard output should be valid: %v", err)
	}
}

func TestValidateTracerExporter(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Enabled = true
	cfg.Tracer.Exporter = "jaeger"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "tracer.exporter")
}

func TestValidateMetricsAddr(t *testing.T) {
	cfg := Defaults()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Addr = "9464"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "metrics.addr")
}

func TestValidationErrorCollectsAll(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.Timeout = 0
	cfg.Chat.ErrorMessage = ""
	err := Validate(cfg)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}
