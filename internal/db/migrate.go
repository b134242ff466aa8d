package db

import (
	"database/sql"
	"fmt"

	"multipark/backoffice/internal/logging"
	"multipark/backoffice/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// gooseLogger routes goose output through zap
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }

// RunMigrations applies the pending migrations of one store.
// dir is migrations.DashboardDir or migrations.FerramentasDir; dialect is "postgres" or "sqlite3".
func RunMigrations(conn *sql.DB, dialect string, dir string) error {
	goose.SetLogger(gooseLogger{log: logging.WithComponent("migrations").With("store", dir)})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(conn, dir); err != nil {
		return fmt.Errorf("run %s migrations: %w", dir, err)
	}

	return nil
}
