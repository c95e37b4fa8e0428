package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// mindshareCmd normalizes project attention into basis points.
var mindshareCmd = &cobra.Command{
	Use:   "mindshare",
	Short: "Normalize project mindshare into basis points per window",
	Long: `Split 10000 basis points across projects for each window.

Each project's weighted attention is turned into a share using the largest
remainder method, so every window sums to exactly 10000 bps.

With --persist each window is stored and later runs report the change
against the previous stored snapshot.

Examples:
  # All windows
  signalboard mindshare --data data.yaml

  # Only 24h and 7d, stored for trend reporting
  signalboard mindshare --data data.yaml --windows 24h,7d --persist

  # One project's share as CSV
  signalboard mindshare --data data.yaml --project alpha --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMindshare(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute mindshare", err)
		}
	},
}
