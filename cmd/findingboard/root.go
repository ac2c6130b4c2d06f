// findingboard serves the findings dashboard and its supporting jobs.
//
// Usage:
//
//	findingboard serve [--addr=:5000]
//	findingboard import [--from=<path>]...
//	findingboard digest [--dry-run]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "findingboard",
	Short: "Findings dashboard pivoted by action and payment phase",
	Long:  "findingboard loads the classified findings table and serves an\naction x phase pivot with drill-down details.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
