package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"findingboard/internal/app"
	"findingboard/internal/config"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and run the digest scheduler",
	Long: `Serve the findings dashboard over HTTP.

The table is loaded once from data_source (file or sqlite) and cached for
the life of the process. When digest_schedule, slack_bot_token and
digest_channel_id are all set, a Slack digest is posted on that schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides listen_addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	if serveFlags.addr != "" {
		cfg.ListenAddr = serveFlags.addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx, cfg)
}
