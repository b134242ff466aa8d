package main

import (
	"fmt"
	"os"

	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/logging"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "backoffice",
	Short:         "Multipark back-office: reservation sync and API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appEnv := os.Getenv("APP_ENV")
		if appEnv == "" {
			appEnv = "development"
		}
		return logging.Init(appEnv)
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides BACKOFFICE_CONFIG_PATH)")
	rootCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")

	rootCmd.AddCommand(serveCmd, syncCmd, migrateCmd)
}

// loadConfig fails fast on a missing required variable
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
