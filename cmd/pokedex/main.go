package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/common"
)

var (
	// Command-line flags
	configFiles []string // Multiple --config flags supported

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "pokedex",
	Short:         "Server-rendered Pokédex backed by PokeAPI",
	Long:          `Pokedex serves Pokémon pages rendered from PokeAPI data and caches responses in a local Badger store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return loadConfig()
	},
	// No subcommand runs the server
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")

	addServeFlags(rootCmd)
	addServeFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration (defaults -> files -> env) before any
// flag overrides are applied by the subcommand
func loadConfig() error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("pokedex.toml"); err == nil {
			configFiles = append(configFiles, "pokedex.toml")
		} else if _, err := os.Stat("deployments/local/pokedex.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/pokedex.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Use temporary logger when the configured one is not available yet
		if logger == nil {
			logger = arbor.NewLogger()
		}
		logger.Error().Strs("config_files", configFiles).Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
