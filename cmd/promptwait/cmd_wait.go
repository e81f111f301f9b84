package main

import (
	"github.com/spf13/cobra"

	"github.com/target/promptwait/internal/comfy"
	apperrors "github.com/target/promptwait/internal/errors"
	"github.com/target/promptwait/internal/report"
)

func newWaitCmd(a *app) *cobra.Command {
	var wf waitFlags
	cmd := &cobra.Command{
		Use:   "wait <prompt-id>",
		Short: "Wait for an already submitted job and report its artifacts",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, err := wf.resolve(cmd, a.cfg.Wait)
			if err != nil {
				return err
			}
			c, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.NewRunner(wait)
			if err != nil {
				return err
			}

			out, waitErr := runner.Wait(cmd.Context(), comfy.PromptID(args[0]))
			if err := report.Write(cmd.OutOrStdout(), out, wf.format()); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeInternal, "write report")
			}
			return waitErr
		},
	}
	wf.register(cmd)
	return cmd
}
