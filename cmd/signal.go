package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// signalCmd ranks creators by signal score for one window.
var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Rank creators by signal score for one window",
	Long: `Score every tracked creator's posts in the window and rank creator/project pairs.

A post's signal combines its engagement, content type and sentiment with the
author's graph authority, then decays with age. Scores are summed per
(account, project) pair and ranked highest first.

Authority comes from the snapshot store for --date when present, and is
otherwise computed from the dataset's follow edges.

Examples:
  # Top creators over the last 7 days
  signalboard signal --data examples/sample_dataset.yaml

  # One account's projects over the last 24 hours
  signalboard signal --data data.yaml --window 24h --account alice

  # Explain the score components as JSON
  signalboard signal --data data.yaml --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSignal(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute signal scores", err)
		}
	},
}
