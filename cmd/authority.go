package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// authorityCmd computes graph authority and smart followers.
var authorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Compute graph authority and smart follower counts",
	Long: `Run PageRank over the follow graph and derive each account's authority
and smart follower count.

Accounts whose followers were fully observed get an exact smart follower
count. The rest get an estimate from their engagement with smart accounts.

With --persist the snapshot is written to the snapshot store under --date,
which later signal and followers runs read back.

Examples:
  # Show authority for every account
  signalboard authority --data data.yaml

  # Compute and store today's snapshot
  signalboard authority --data data.yaml --persist

  # Export as Parquet
  signalboard authority --data data.yaml --output parquet --output-file authority.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthority(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute authority", err)
		}
	},
}
