// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/converter"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// ProcessingLogTable receives one row per processing log entry
const ProcessingLogTable = "wrangle_processing_log"

// PostgresConnector exports wrangled tables to PostgreSQL
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
	schema string
	writer *tableWriter
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, schema string, logger *zap.Logger) (*PostgresConnector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyPool(db, cfg.Pool)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	c := newPostgresConnector(db, cfg, schema, logger)
	LogConnectionStats(logger, cfg.Database, db.DB)
	return c, nil
}

func newPostgresConnector(db *sqlx.DB, cfg *config.PostgresConfig, schema string, logger *zap.Logger) *PostgresConnector {
	if schema == "" {
		schema = "public"
	}
	return &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
		schema: schema,
		writer: &tableWriter{
			db:        db,
			dialect:   converter.DialectPostgres,
			types:     converter.NewTypeConverter(logger),
			schema:    schema,
			batchSize: DefaultBatchSize,
			logger:    logger,
		},
	}
}

// Name identifies the sink
func (c *PostgresConnector) Name() string {
	return "postgres"
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Schema returns the export schema
func (c *PostgresConnector) Schema() string {
	return c.schema
}

// Validate checks the server version and makes sure the export schema exists
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	if c.cfg != nil && c.cfg.StatementTimeout > 0 {
		stmt := fmt.Sprintf("SET statement_timeout = %d", c.cfg.StatementTimeout.Milliseconds())
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			c.logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if _, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+converter.QuoteIdentifier(c.schema)); err != nil {
		return fmt.Errorf("failed to create/verify schema %s: %w", c.schema, err)
	}
	return nil
}

// ExportTable replaces schema.name with the table's rows
func (c *PostgresConnector) ExportTable(ctx context.Context, name string, table *model.Table) (int64, error) {
	return c.writer.write(ctx, name, table)
}

// RecordProcessingLog stores the run's log entries alongside the exported data
func (c *PostgresConnector) RecordProcessingLog(ctx context.Context, runID string, entries []model.LogEntry) error {
	qualified := converter.QualifiedName(c.schema, ProcessingLogTable)
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	name TEXT NOT NULL,
	logged_at TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	details TEXT,
	warnings JSONB,
	errors JSONB,
	PRIMARY KEY (run_id, seq)
)`, qualified)
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create processing log table: %w", err)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := tx.Rebind(fmt.Sprintf(
		"INSERT INTO %s (run_id, seq, name, logged_at, status, details, warnings, errors) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		qualified))
	for i, entry := range entries {
		warnings, err := jsonList(entry.Warnings)
		if err != nil {
			return err
		}
		errs, err := jsonList(entry.Errors)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			runID, i+1, entry.Name, entry.Timestamp, string(entry.Status), entry.Details, warnings, errs); err != nil {
			return fmt.Errorf("failed to record log entry %q: %w", entry.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit processing log: %w", err)
	}
	c.logger.Info("Recorded processing log", zap.String("runID", runID), zap.Int("entries", len(entries)))
	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.schema, c.db.DB)
	return c.db.Close()
}

func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode log list: %w", err)
	}
	return string(data), nil
}
