package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/pagewatch/pkg/config"
	"github.com/entrhq/pagewatch/pkg/logging"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "pagewatch",
	Short: "Detect meaningful UI changes on web pages",
	Long: `pagewatch drives a browser, compares successive metrics of a page and
decides whether the page changed in a minor or major way. Major changes
(dialogs, overlays, navigation, new forms) are captured as screenshots and
DOM snapshots.

Run a watch job directly with "pagewatch watch", or expose the browser tools
to an agent with "pagewatch mcp".`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// sharedSetup loads the config file and sets the log level for every
// subcommand.
func sharedSetup() error {
	logging.SetDefaultLevel(logging.ParseLevel(logLevel))
	if err := config.Initialize(configPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default ~/.pagewatch/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log file level: debug, info, warn, error")
	rootCmd.AddCommand(versionCmd)
}
