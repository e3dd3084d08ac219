package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"hibot/internal/adapter/tui/chat"
	"hibot/internal/infra/logger"
)

// runChat opens the interactive chat widget.
func (a *app) runChat(parent context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// The UI owns the terminal: logs go to a file or nowhere.
	log, logCloser, err := logger.New(logger.ForTerminalUI(cfg.Logger))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	if cfg.Tracer.Enabled && (cfg.Tracer.Output == "" || cfg.Tracer.Output == "stdout") {
		log.Warn("stdout trace export disabled while the chat UI is open; set tracer.output to a file")
		cfg.Tracer.Enabled = false
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := initRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.close(shutdownCtx); err != nil {
			log.Error("runtime cleanup error", "error", err)
		}
	}()

	channel := chat.NewTUIChannel(log, rt.bus, chat.ChannelOptions{
		Title:        cfg.Chat.Title,
		Placeholder:  cfg.Chat.Placeholder,
		PendingLabel: cfg.Chat.PendingLabel,
		Endpoint:     cfg.Backend.BaseURL,
	})
	ctrl := rt.controller(channel)

	log.Info("hibot starting",
		"backend", cfg.Backend.BaseURL,
		"quick_replies", ctrl.Catalog().Len(),
		"metrics", cfg.Metrics.Enabled,
		"circuit_breaker", cfg.Backend.CircuitBreaker.Enabled,
	)
	return channel.Start(ctx, ctrl)
}
