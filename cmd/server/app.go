package main

import (
	"context"
	"fmt"
	"time"

	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/providers"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// targetStore is a sync destination that also backs the reservation API
type targetStore interface {
	repositories.ReservationStore
	repositories.ReservationBrowser
}

// app holds the open connections and repositories shared by the commands
type app struct {
	cfg     *config.Config
	metrics *metrics.MetricsRegistry

	dashboardSQL   *sqlx.DB
	dashboardORM   *gorm.DB
	ferramentasSQL *sqlx.DB
	mongoClient    *mongo.Client

	legacy      *providers.MongoLegacyProvider
	dashboard   *repositories.ReservationRepo
	ferramentas *repositories.ReservaRepo
	syncLogs    *repositories.SyncLogRepo
	keys        *repositories.KeysRepo
}

// openApp opens every pool and client without waiting for the stores.
// Only configuration errors fail here; an unreachable store is reported by health checks and ticks.
func openApp(ctx context.Context, cfg *config.Config, m *metrics.MetricsRegistry) (*app, error) {
	a := &app{cfg: cfg, metrics: m}

	var err error
	if a.dashboardSQL, a.ferramentasSQL, err = openSQL(cfg); err != nil {
		return nil, err
	}

	if a.dashboardORM, err = db.InitPostgresORM(a.dashboardSQL.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("dashboard store (gorm): %w", err)
	}

	if a.mongoClient, err = providers.ConnectToMongoDB(ctx, cfg.Legacy.URI); err != nil {
		a.Close()
		return nil, fmt.Errorf("legacy store: %w", err)
	}
	logging.Info("Opened legacy document store client", "database", cfg.Legacy.Database)

	a.legacy = providers.NewMongoLegacyProvider(
		providers.NewMongoClientProvider(a.mongoClient, cfg.Legacy.Database),
		cfg.Legacy.CollectionPrefix,
	)
	a.dashboard = repositories.NewReservationRepo(a.dashboardORM)
	a.ferramentas = repositories.NewReservaRepo(a.ferramentasSQL)
	a.syncLogs = repositories.NewSyncLogRepo(a.dashboardORM)
	a.keys = repositories.NewApiKeysRepo(a.dashboardSQL)

	return a, nil
}

// openSQL opens the dashboard and ferramentas pools
func openSQL(cfg *config.Config) (*sqlx.DB, *sqlx.DB, error) {
	dashboard, err := db.InitPostgres(cfg.Dashboard.URL, cfg.Dashboard.MaxOpenConns)
	if err != nil {
		return nil, nil, fmt.Errorf("dashboard store: %w", err)
	}
	logging.Info("Opened Postgres pool", "store", constants.StoreDashboard)

	ferramentas, err := db.InitPostgres(cfg.Ferramentas.URL, cfg.Ferramentas.MaxOpenConns)
	if err != nil {
		dashboard.Close()
		return nil, nil, fmt.Errorf("ferramentas store: %w", err)
	}
	logging.Info("Opened Postgres pool", "store", constants.StoreFerramentas)

	return dashboard, ferramentas, nil
}

// logReachability pings every store once at boot. Failures are warnings only.
func (a *app) logReachability(ctx context.Context, timeout time.Duration) {
	probes := map[string]func(context.Context) error{
		constants.StoreDashboard:   a.dashboard.Ping,
		constants.StoreFerramentas: a.ferramentas.Ping,
		constants.StoreLegacy:      a.legacy.Ping,
	}
	for name, ping := range probes {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := ping(pingCtx)
		cancel()
		if err != nil {
			logging.Warn("Store unreachable at startup", "store", name, "error", err)
			continue
		}
		logging.Info("Store reachable", "store", name)
	}
}

// target is the relational store selected by SYNC_TARGET
func (a *app) target() targetStore {
	if a.cfg.Sync.Target == config.TargetFerramentas {
		return a.ferramentas
	}
	return a.dashboard
}

func (a *app) Close() {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(context.Background()); err != nil {
			logging.Warn("Failed to disconnect from legacy store", "error", err)
		}
	}
	if a.ferramentasSQL != nil {
		a.ferramentasSQL.Close()
	}
	// gorm shares the dashboard pool
	if a.dashboardSQL != nil {
		a.dashboardSQL.Close()
	}
}
