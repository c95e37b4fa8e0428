package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// batchCmd runs the scheduled authority and mindshare jobs.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the authority and mindshare batch jobs for one date",
	Long: `Run authority first, then mindshare for every window, and report each unit.

Results are always written to the snapshot store. A failed unit does not
stop the others, and the command exits non-zero when any unit failed.
Re-running a date overwrites its snapshots.

Examples:
  # Nightly job
  signalboard batch --data data.yaml

  # Backfill a past date
  signalboard batch --data data.yaml --date 2026-02-01`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Batch run failed", err)
		}
	},
}
