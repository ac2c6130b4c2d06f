package main

import (
	"github.com/spf13/cobra"

	"findingboard/internal/app"
	"findingboard/internal/config"
)

var digestFlags struct {
	dryRun bool
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Post the findings digest to Slack once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadConfig()
		return app.Digest(cmd.Context(), cfg, digestFlags.dryRun, cmd.OutOrStdout())
	},
}

func init() {
	digestCmd.Flags().BoolVar(&digestFlags.dryRun, "dry-run", false, "Print the digest instead of posting it")
}
