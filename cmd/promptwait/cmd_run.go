package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/target/promptwait/config"
	"github.com/target/promptwait/internal/comfy"
	apperrors "github.com/target/promptwait/internal/errors"
	"github.com/target/promptwait/internal/jobfile"
	"github.com/target/promptwait/internal/report"
	"github.com/target/promptwait/internal/service"
)

type jobFlags struct {
	job       string
	template  string
	image     string
	prefix    string
	rotation  int
	subfolder string
	overwrite bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.job, "job", "", "Job description file (JSON or YAML, - for stdin)")
	fl.StringVar(&f.template, "template", "", "Built-in workflow template (see 'promptwait templates')")
	fl.StringVar(&f.image, "image", "", "Local image uploaded before submission and fed to the template")
	fl.StringVar(&f.prefix, "prefix", "", "Output filename prefix for templates")
	fl.IntVar(&f.rotation, "rotation", 0, "Rotation in degrees for the rotate template (default 90)")
	fl.StringVar(&f.subfolder, "subfolder", "", "Upload subfolder on the service host")
	fl.BoolVar(&f.overwrite, "overwrite", false, "Overwrite an existing upload with the same name")
}

// request turns the flags into a RunRequest. The returned closer releases the image file.
func (f *jobFlags) request(cmd *cobra.Command) (service.RunRequest, func(), error) {
	noop := func() {}
	var req service.RunRequest

	switch {
	case f.job == "" && f.template == "":
		return req, noop, apperrors.Validation("one of --job or --template is required")
	case f.job != "" && f.template != "":
		return req, noop, apperrors.Validation("--job and --template are mutually exclusive")
	}

	if f.job != "" {
		job, err := jobfile.Load(f.job, cmd.InOrStdin())
		if err != nil {
			return req, noop, err
		}
		req.Job = job
	} else {
		tmpl, ok := comfy.LookupTemplate(f.template)
		if !ok {
			return req, noop, apperrors.Validationf("unknown template %q", f.template)
		}
		req.Template = &tmpl
		req.Params = comfy.TemplateParams{FilenamePrefix: f.prefix}
		if cmd.Flags().Changed("rotation") {
			rotation := f.rotation
			req.Params.Rotation = &rotation
		}
	}

	if f.image == "" {
		return req, noop, nil
	}
	file, err := os.Open(f.image)
	if err != nil {
		return req, noop, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "open image %s", f.image)
	}
	req.Image = &service.ImageUpload{
		Name:    filepath.Base(f.image),
		Body:    file,
		Options: comfy.UploadOptions{Subfolder: strings.TrimSpace(f.subfolder), Overwrite: f.overwrite},
	}
	return req, func() { _ = file.Close() }, nil
}

type waitFlags struct {
	maxWait  time.Duration
	interval time.Duration
	asJSON   bool
}

func (f *waitFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.DurationVar(&f.maxWait, "max-wait", 0, "Total wait budget (overrides WAIT_MAX)")
	fl.DurationVar(&f.interval, "interval", 0, "Delay between polls (overrides WAIT_INTERVAL)")
	fl.BoolVar(&f.asJSON, "json", false, "Print the outcome as JSON")
}

// resolve applies flag overrides on top of the configured budget.
func (f *waitFlags) resolve(cmd *cobra.Command, base config.WaitConfig) (config.WaitConfig, error) {
	if cmd.Flags().Changed("max-wait") {
		if f.maxWait <= 0 {
			return base, apperrors.Validationf("--max-wait must be positive, got %s", f.maxWait)
		}
		base.Max = f.maxWait
	}
	if cmd.Flags().Changed("interval") {
		if f.interval <= 0 {
			return base, apperrors.Validationf("--interval must be positive, got %s", f.interval)
		}
		base.Interval = f.interval
	}
	return base, nil
}

func (f *waitFlags) format() report.Format {
	if f.asJSON {
		return report.FormatJSON
	}
	return report.FormatText
}

func newRunCmd(a *app) *cobra.Command {
	var (
		jf jobFlags
		wf waitFlags
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe the service, submit a job and wait for its artifacts",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			wait, err := wf.resolve(cmd, a.cfg.Wait)
			if err != nil {
				return err
			}
			req, release, err := jf.request(cmd)
			if err != nil {
				return err
			}
			defer release()

			c, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.NewRunner(wait)
			if err != nil {
				return err
			}

			out, runErr := runner.Run(cmd.Context(), req)
			if err := report.Write(cmd.OutOrStdout(), out, wf.format()); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeInternal, "write report")
			}
			return runErr
		},
	}
	jf.register(cmd)
	wf.register(cmd)
	return cmd
}
