package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hibot/internal/adapter/tui/uxerror"
	"hibot/internal/infra/config"
)

// errExchangeFailed marks a one-shot exchange that ended with the fixed error
// message. The transcript already told the user, so main only sets the status.
var errExchangeFailed = errors.New("exchange failed")

// app carries the global flags and output streams shared by all commands.
type app struct {
	configPath string
	baseURL    string
	stdout     io.Writer
	stderr     io.Writer
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.execute(os.Args[1:]))
}

// execute runs the command line and returns the process exit status.
func (a *app) execute(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errExchangeFailed):
		return 1
	default:
		fmt.Fprintln(a.stderr, uxerror.Humanize(err).Render())
		return 1
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("HIBOT_CONFIG"); p != "" {
		return p
	}
	return "hibot.yaml"
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hibot",
		Short: "하이봇 - terminal chat widget for the support backend",
		Long: `hibot is a single-conversation chat client for the support backend.

Run without arguments to open the interactive chat. Free-text questions go to
the chat endpoint; quick replies send their catalog index to the FAQ endpoint.

Configuration is read from hibot.yaml (or --config / HIBOT_CONFIG) and
HIBOT_* environment variables override file values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "config file path")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "backend base URL (overrides backend.base_url)")

	root.AddCommand(a.askCmd(), a.faqCmd())
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.baseURL != "" {
		cfg.Backend.BaseURL = a.baseURL
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
