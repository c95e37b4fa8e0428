// Package cmd defines the command-line interface for signalboard.
package cmd

import (
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(authorityCmd)
	rootCmd.AddCommand(followersCmd)
	rootCmd.AddCommand(mindshareCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshots command
	snapshotsCmd.AddCommand(snapshotsStatusCmd)
	snapshotsCmd.AddCommand(snapshotsExportCmd)
	snapshotsCmd.AddCommand(snapshotsMigrateCmd)
	snapshotsCmd.AddCommand(snapshotsClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("data", "d", "", "Path to the dataset file (yaml or json)")
	rootCmd.PersistentFlags().String("date", "", "Snapshot date in YYYY-MM-DD or RFC3339 (default today, UTC)")
	rootCmd.PersistentFlags().StringP("window", "w", string(schema.Window7d), "Scoring window: 24h or 7d or 30d")
	rootCmd.PersistentFlags().String("windows", "", "Comma-separated mindshare windows (default all)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Deadline for one command run (e.g. 90s, 10m, 2 hours)")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Account, project and persist repeat across commands, so sharedSetup binds
	// them for the invoked command only
	for _, c := range []*cobra.Command{signalCmd, authorityCmd, followersCmd, mindshareCmd} {
		c.Flags().String("account", "", "Restrict results to one account id")
		c.Flags().String("project", "", "Restrict results to one project id")
	}
	for _, c := range []*cobra.Command{authorityCmd, mindshareCmd, serveCmd} {
		c.Flags().Bool("persist", false, "Write computed snapshots to the snapshot store")
	}

	leaderboardCmd.Flags().String("arena", "", "Arena id to rank (default every arena)")
	if err := viper.BindPFlags(leaderboardCmd.Flags()); err != nil {
		contract.LogFatal("Error binding leaderboard flags", err)
	}

	serveCmd.Flags().String("listen", ":8080", "Address for the HTTP server")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	snapshotsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshots migrate flags", err)
	}
}
