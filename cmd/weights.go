package cmd

import (
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/spf13/cobra"
)

// weightsCmd displays the effective engine configuration.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Display the decay, weight and graph parameters in effect",
	Long: `Show the engine parameters used by every score, after overrides from the
config file's engine section are applied.

No dataset is read. Use this to check custom weights before a batch run.

Examples:
  signalboard weights
  signalboard weights --config .signalboard.yaml --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeights(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display weights", err)
		}
	},
}
