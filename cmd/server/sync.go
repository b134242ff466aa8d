package main

import (
	"encoding/json"
	"fmt"
	"os"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var fullSync bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync tick and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), cfg, metrics.NewMetricsRegistry(prometheus.NewRegistry()))
		if err != nil {
			return err
		}
		defer a.Close()

		scheduler := jobs.NewSyncScheduler(jobs.SyncDependencies{
			Config:  cfg.Sync,
			Legacy:  a.legacy,
			Store:   a.target(),
			Logs:    a.syncLogs,
			Metrics: a.metrics,
		})

		stats, err := scheduler.Trigger(cmd.Context(), jobs.TickOptions{Full: fullSync, Trigger: constants.TriggerCLI})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}

		if len(stats.Failures) > 0 || stats.Failed() > 0 {
			return fmt.Errorf("sync finished with %d record failures and %d direction failures", stats.Failed(), len(stats.Failures))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&fullSync, "full", false, "ignore the trailing window and pull every legacy document")
}
