package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"multipark/backoffice/internal/api"
	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/routes"
	"multipark/backoffice/internal/workers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var migrateOnStart bool

const startupProbeTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the sync scheduler (default)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.Info("Back-office starting up",
		"version", Version,
		"environment", cfg.AppEnv,
		"sync_target", cfg.Sync.Target,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	a, err := openApp(ctx, cfg, metricsReg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logReachability(ctx, startupProbeTimeout)

	if migrateOnStart {
		if err := runMigrations(ctx, a.dashboardSQL, a.ferramentasSQL); err != nil {
			return err
		}
	}

	cache, redisClient := common.NewCache(cfg, metricsReg)
	defer cache.Close()

	scheduler, err := jobs.InitializeJobs(ctx, jobs.SyncDependencies{
		Config:  cfg.Sync,
		Legacy:  a.legacy,
		Store:   a.target(),
		Logs:    a.syncLogs,
		Metrics: metricsReg,
	})
	if err != nil {
		return fmt.Errorf("start sync scheduler: %w", err)
	}

	workers.InitWorkers(ctx, map[string]repositories.ReservationStore{
		constants.StoreDashboard:   a.dashboard,
		constants.StoreFerramentas: a.ferramentas,
	}, metricsReg, time.Duration(cfg.Sync.CallTimeout))

	deps := &api.Dependencies{
		Repo: &api.Repositories{
			Reservations: a.target(),
			Dashboard:    a.dashboard,
			Ferramentas:  a.ferramentas,
			SyncLogs:     a.syncLogs,
			Keys:         a.keys,
		},
		Services: &api.Services{
			Cache:     cache,
			Legacy:    a.legacy,
			Redis:     redisClient,
			Scheduler: scheduler,
			Metrics:   metricsReg,
		},
		UpSince: time.Now(),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes.RegisterRoutes(cfg, deps, prometheus.DefaultGatherer),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown error", "error", err)
	}

	// No new ticks; let the running one finish before the pools close
	scheduler.Stop()
	if err := scheduler.Wait(shutdownCtx); err != nil {
		logging.Warn("Sync tick still running at shutdown", "error", err)
	}

	logging.Info("Shutdown complete")
	return nil
}
