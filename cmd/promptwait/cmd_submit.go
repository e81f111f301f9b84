package main

import (
	"github.com/spf13/cobra"

	apperrors "github.com/target/promptwait/internal/errors"
)

func newSubmitCmd(a *app) *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Probe the service and submit a job without waiting",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, release, err := jf.request(cmd)
			if err != nil {
				return err
			}
			defer release()

			c, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.NewRunner(a.cfg.Wait)
			if err != nil {
				return err
			}
			sub, err := runner.Launch(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := writef(cmd.OutOrStdout(), "%s\n", sub.PromptID); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeInternal, "write prompt id")
			}
			return nil
		},
	}
	jf.register(cmd)
	return cmd
}
