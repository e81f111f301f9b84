package main

import (
	"github.com/spf13/cobra"

	apperrors "github.com/target/promptwait/internal/errors"
	"github.com/target/promptwait/internal/report"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the service is reachable and show its system stats",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.NewRunner(a.cfg.Wait)
			if err != nil {
				return err
			}
			stats, err := runner.Probe(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.WriteStats(cmd.OutOrStdout(), c.Comfy.BaseURL(), stats); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeInternal, "write stats")
			}
			return nil
		},
	}
}
