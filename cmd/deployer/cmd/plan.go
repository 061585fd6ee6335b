package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/deployer/internal/service/pipeline"
)

// planCmd prints the stages without running them.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the deploy stages and their commands without running them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return pipeline.Plan(cmd.Context(), pipelineOptions(cmd))
	},
}
