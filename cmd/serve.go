package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/signalboard/internal/server"
	"github.com/huangsam/signalboard/internal/telemetry"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Long: `Start an HTTP server exposing the scoring operations under /api/v1.

Routes:
  GET  /api/v1/health
  GET  /api/v1/metrics
  POST /api/v1/signal
  POST /api/v1/authority
  POST /api/v1/mindshare
  POST /api/v1/leaderboard
  GET  /api/v1/followers/{accountID}

POST bodies may carry the dataset inline. Otherwise --data is read on each
request. Snapshots are written only with --persist.

Examples:
  signalboard serve --data data.yaml --listen :8080
  curl -s -XPOST localhost:8080/api/v1/mindshare -d '{"windows":["24h"]}'`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
		metrics := telemetry.NewMetrics("signalboard", version)
		return server.New(cfg, storeManager, metrics, logger).ListenAndServe(ctx, cfg.ListenAddr)
	},
}
