// main is the entry point for the signalboard CLI.
package main

import (
	"github.com/huangsam/signalboard/cmd"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/iostore"
)

func main() {
	defer iostore.CloseStores()
	cmd.SetStoreManager(iostore.Manager)

	if err := cmd.Execute(); err != nil {
		iostore.CloseStores()
		contract.LogFatal("signalboard failed", err)
	}
	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Cannot stop profiling", err)
	}
}
