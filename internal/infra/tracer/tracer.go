// Package tracer configures OpenTelemetry for hibot and provides the span
// vocabulary shared by the controller and the backend client.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"hibot/internal/infra/config"
)

const instrumentation = "hibot"

// Span attribute keys.
const (
	keyExchangeID      = attribute.Key("exchange.id")
	keyExchangeSource  = attribute.Key("exchange.source")
	keyExchangeOutcome = attribute.Key("exchange.outcome")
	keyHTTPPath        = attribute.Key("http.path")
	keyHTTPStatus      = attribute.Key("http.status_code")
)

// Setup installs the global tracer provider described by cfg and returns
// its shutdown func. Disabled tracing and the noop exporter install a noop
// provider. The stdout exporter writes to cfg.Output, a file path or
// "stdout".
func Setup(ctx context.Context, cfg config.TracerConfig) (func(context.Context) error, error) {
	exporter, closeOutput, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", instrumentation),
	))
	if err != nil {
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), closeOutput())
	}, nil
}

// newExporter returns a nil exporter when no spans should be exported.
func newExporter(cfg config.TracerConfig) (sdktrace.SpanExporter, func() error, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	switch cfg.Exporter {
	case "", "noop":
		return nil, nil, nil
	case "stdout":
	default:
		return nil, nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}

	w, closeOutput, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace output: %w", err)
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		_ = closeOutput()
		return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	return exp, closeOutput, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "stdout" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// StartSpan starts a span on the hibot tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Finish sets the span status from err. It does not end the span.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// Attribute constructors for the keys above.

func ExchangeID(id string) attribute.KeyValue { return keyExchangeID.String(id) }
func ExchangeSource(source string) attribute.KeyValue { return keyExchangeSource.String(source) }
func ExchangeOutcome(outcome string) attribute.KeyValue { return keyExchangeOutcome.String(outcome) }
func HTTPPath(path string) attribute.KeyValue { return keyHTTPPath.String(path) }
func HTTPStatus(code int) attribute.KeyValue { return keyHTTPStatus.Int(code) }
