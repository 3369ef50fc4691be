package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
)

var (
	// Command-line flags
	configFiles []string
	serverPort  int
	serverHost  string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "titulus",
	Short: "Market research report title parser",
	Long: `Titulus parses market research report titles into structured records:
topic, report type, geographic regions, date range, and market-term
classification, driven by a persistent pattern library.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
}

// initRuntime runs the startup sequence shared by all commands:
// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
// 2. Apply CLI overrides (highest priority)
// 3. Initialize logger
func initRuntime(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("titulus.toml"); err == nil {
			configFiles = append(configFiles, "titulus.toml")
		} else if _, err := os.Stat("deployments/local/titulus.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/titulus.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, serverPort, serverHost)

	// Parse writes JSON to stdout; keep the log stream quiet there unless
	// the operator asked for a level explicitly.
	if cmd.Name() == "parse" && os.Getenv("TITULUS_LOG_LEVEL") == "" {
		config.Logging.Level = "warn"
	}

	logger = common.InitLogger(config)

	return nil
}

func main() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil,
		"Configuration file path (can be specified multiple times, later files override earlier ones)")
	rootCmd.PersistentFlags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
