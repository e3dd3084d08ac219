package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hibot/internal/adapter/backend"
	"hibot/internal/domain"
	"hibot/internal/infra/config"
	"hibot/internal/infra/metrics"
	"hibot/internal/infra/tracer"
	"hibot/internal/usecase/conversation"
	"hibot/internal/usecase/eventbus"
	"hibot/internal/usecase/transcript"
)

// runtime holds the components shared by the interactive and one-shot commands.
type runtime struct {
	cfg      *config.Config
	log      *slog.Logger
	bus      *eventbus.Bus
	store    *transcript.Store
	gateway  domain.Gateway
	recorder *metrics.Recorder
	closers  []func(context.Context) error
}

// initRuntime wires tracing, the event bus, the transcript store, the backend
// gateway and, when enabled, the metrics endpoint.
func initRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}
	rt.onClose(shutdownTracer)

	rt.bus = eventbus.New(log)
	rt.onClose(func(context.Context) error {
		rt.bus.Close()
		return nil
	})
	unsubTrace := logEvents(ctx, rt.bus, log)
	rt.onClose(func(context.Context) error {
		unsubTrace()
		return nil
	})
	rt.store = transcript.New(rt.bus)

	gw, closeGateway := backend.NewGateway(cfg.Backend, log)
	rt.gateway = gw
	rt.onClose(func(context.Context) error {
		closeGateway()
		return nil
	})

	if cfg.Metrics.Enabled {
		rt.recorder = metrics.NewRecorder()
		srv, err := metrics.Listen(cfg.Metrics.Addr, rt.recorder, log)
		if err != nil {
			_ = rt.close(ctx)
			return nil, err
		}
		srv.Serve()
		rt.onClose(srv.Shutdown)
	}

	return rt, nil
}

// controller builds the conversation controller. input may be nil.
func (rt *runtime) controller(input conversation.InputBuffer) *conversation.Controller {
	deps := conversation.Deps{
		Transcript:   rt.store,
		Gateway:      rt.gateway,
		Catalog:      domain.NewCatalog(rt.cfg.Chat.QuickReplies),
		Logger:       rt.log,
		ErrorMessage: rt.cfg.Chat.ErrorMessage,
		Timeout:      rt.cfg.Backend.Timeout,
		Input:        input,
		Bus:          rt.bus,
	}
	if rt.recorder != nil {
		deps.Recorder = rt.recorder
	}
	return conversation.New(deps)
}

func (rt *runtime) onClose(fn func(context.Context) error) {
	rt.closers = append(rt.closers, fn)
}

// close releases everything in reverse order of creation.
func (rt *runtime) close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
