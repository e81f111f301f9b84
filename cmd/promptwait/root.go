package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/target/promptwait/config"
	"github.com/target/promptwait/internal/bootstrap"
	apperrors "github.com/target/promptwait/internal/errors"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries per-invocation state shared by the subcommands.
type app struct {
	streams streams

	baseURL   string
	outputDir string

	cfg       config.AppConfig
	logger    *slog.Logger
	container *bootstrap.Container
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "promptwait",
		Short: "Submit a generation job and wait for its artifacts",
		Long: "promptwait submits a job description to a ComfyUI-compatible service,\n" +
			"polls its history until the job completes, fails or times out,\n" +
			"and reports the produced artifacts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid flags")
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.baseURL, "base-url", "", "Service address (overrides COMFY_BASE_URL)")
	pf.StringVar(&a.outputDir, "output-dir", "", "Artifact directory on the service host (overrides COMFY_OUTPUT_DIR)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newProbeCmd(a))
	root.AddCommand(newSubmitCmd(a))
	root.AddCommand(newWaitCmd(a))
	root.AddCommand(newTemplatesCmd())
	return root
}

// usageArgs reports argument count mistakes as validation errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid arguments")
		}
		return nil
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "load config")
	}
	if v := strings.TrimSpace(a.baseURL); v != "" {
		cfg.Comfy.BaseURL = v
	}
	if v := strings.TrimSpace(a.outputDir); v != "" {
		cfg.Comfy.OutputDir = v
	}
	cfg.Comfy.Sanitize()

	a.cfg = cfg
	a.logger = bootstrap.InitLogger(cmd.ErrOrStderr(), cfg.SlogLevel())
	return nil
}

// services builds the container on first use so commands that never touch
// the network do not dial notification sinks.
func (a *app) services(ctx context.Context) (*bootstrap.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	c, err := bootstrap.NewContainer(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "configure service client")
	}
	a.container = c
	return c, nil
}

func (a *app) close(ctx context.Context) {
	if a.container == nil {
		return
	}
	if err := a.container.Close(); err != nil && a.logger != nil {
		a.logger.WarnContext(ctx, "shutdown cleanup failed", "error", err)
	}
}
