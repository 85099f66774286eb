package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Attentive/internal/config"
)

// Set via -ldflags at build time; ATTENTIVE_COMMIT/ATTENTIVE_BUILD_TIME
// override them at runtime.
var (
	commit    = "(devel)"
	buildTime = ""
)

var rootCmd = &cobra.Command{
	Use:           "attentive",
	Short:         "Attention screening assessment server",
	Long:          "Attentive serves the attention-screening questionnaire API for children aged 8-12: sessions, scoring, reports and statistics.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides ATTENTIVE_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database file (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the --config flag, then ATTENTIVE_CONFIG, and applies
// the --db override on top of the loaded configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("ATTENTIVE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if cfg.Commit == "" {
		cfg.Commit = commit
	}
	if cfg.BuildTime == "" {
		cfg.BuildTime = buildTime
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
