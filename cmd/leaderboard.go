package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// leaderboardCmd ranks arena participants.
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank arena participants by signal since the arena opened",
	Long: `Rank each arena's participants by the signal they produced for the arena's
project since it started.

Participants with a verified follow get a 1.5x multiplier.

Examples:
  # Every arena
  signalboard leaderboard --data data.yaml

  # One arena, top 10
  signalboard leaderboard --data data.yaml --arena spring --limit 10`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLeaderboard(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build leaderboard", err)
		}
	},
}
