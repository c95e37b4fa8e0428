package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// followersCmd reports one account's smart followers and their trend.
var followersCmd = &cobra.Command{
	Use:   "followers",
	Short: "Show an account's smart followers with 7d and 30d deltas",
	Long: `Look up an account's smart follower count as of --date.

Stored authority snapshots supply the count and the 7d/30d deltas. Without a
stored snapshot the count is computed from --data and deltas are omitted.

Requires: --account

Examples:
  signalboard followers --account alice
  signalboard followers --account alice --date 2026-03-01 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFollowers(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot look up smart followers", err)
		}
	},
}
