// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// DatabaseConnector is a SQL sink for wrangled tables
type DatabaseConnector interface {
	// Name identifies the sink in logs
	Name() string

	// DB returns the underlying database handle
	DB() *sqlx.DB

	// Schema is where exported tables are written
	Schema() string

	// Validate verifies the connection and prepares the target schema
	Validate(ctx context.Context) error

	// ExportTable replaces schema.name with the table's contents
	ExportTable(ctx context.Context, name string, table *model.Table) (int64, error)

	// Close closes the connection and releases resources
	Close() error
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if pingCtx.Err() != nil {
			return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
		}
		return err
	}
	return nil
}

// ApplyPool sizes the connection pool; zero fields keep driver defaults
func ApplyPool(db *sqlx.DB, pool config.PoolConfig) {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}
}
