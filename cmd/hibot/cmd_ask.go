package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hibot/internal/domain"
	"hibot/internal/infra/config"
	"hibot/internal/infra/logger"
	"hibot/internal/usecase/conversation"
)

func (a *app) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one free-text question and print the transcript",
		Long: `Sends a single question to the chat endpoint and prints every transcript
change as it happens. Multiple arguments are joined with spaces.

Exits with status 1 when the backend could not answer.

Example:
  hibot ask 안녕`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return a.oneShot(cmd.Context(), func(ctx context.Context, ctrl *conversation.Controller) (conversation.Result, error) {
				return ctrl.Submit(ctx, question)
			})
		},
	}
}

func (a *app) faqCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "faq <index>",
		Short: "Send one quick reply by catalog index, or list the catalog",
		Long: `Sends the quick reply at <index> to the FAQ endpoint. Indices start at 0
and are the numbers the backend receives as faq_number.

Use --list to print the catalog with its indices.

Examples:
  hibot faq --list
  hibot faq 0`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return a.listFAQ()
			}
			if len(args) != 1 {
				return fmt.Errorf("faq: missing <index> (or use --list)")
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("faq: index %q is not a number", args[0])
			}
			return a.oneShot(cmd.Context(), func(ctx context.Context, ctrl *conversation.Controller) (conversation.Result, error) {
				return ctrl.Select(ctx, index)
			})
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print the quick-reply catalog")
	return cmd
}

func (a *app) listFAQ() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	for i, q := range domain.NewCatalog(cfg.Chat.QuickReplies).Entries() {
		fmt.Fprintf(a.stdout, "%d\t%s\n", i, q)
	}
	return nil
}

type exchangeFunc func(ctx context.Context, ctrl *conversation.Controller) (conversation.Result, error)

// oneShot runs a single exchange with a transcript printer attached.
func (a *app) oneShot(parent context.Context, run exchangeFunc) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

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

	p := newPrinter(a.stdout, pendingLabel(cfg))
	defer p.attach(rt.bus)()

	res, err := run(ctx, rt.controller(nil))
	if err != nil {
		return err
	}
	return resultError(res)
}

// resultError maps a finished exchange to the command's exit status.
func resultError(res conversation.Result) error {
	switch res.Outcome {
	case conversation.OutcomeFailed:
		return errExchangeFailed
	case conversation.OutcomeRejected:
		if res.Reason == conversation.ReasonEmpty {
			return fmt.Errorf("exchange rejected: question is empty")
		}
		return fmt.Errorf("exchange rejected: another exchange is in flight")
	}
	return nil
}

func pendingLabel(cfg *config.Config) string {
	if cfg.Chat.PendingLabel != "" {
		return cfg.Chat.PendingLabel
	}
	return config.Defaults().Chat.PendingLabel
}
