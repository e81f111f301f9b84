package main

import (
	"github.com/spf13/cobra"

	"github.com/target/promptwait/internal/comfy"
	"github.com/target/promptwait/internal/report"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List built-in workflow templates",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.WriteTemplates(cmd.OutOrStdout(), comfy.Templates())
		},
	}
}
