// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/converter"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// SnowflakeConnector exports wrangled tables to Snowflake
type SnowflakeConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
	writer *tableWriter
}

// sessionInfo is the row returned by the session check
type sessionInfo struct {
	Role      sql.NullString `db:"ROLE"`
	Database  sql.NullString `db:"DATABASE"`
	Warehouse sql.NullString `db:"WAREHOUSE"`
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyPool(db, cfg.Pool)

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	c := newSnowflakeConnector(db, cfg, logger)
	LogConnectionStats(logger, cfg.Database, db.DB)
	return c, nil
}

func newSnowflakeConnector(db *sqlx.DB, cfg *config.SnowflakeConfig, logger *zap.Logger) *SnowflakeConnector {
	return &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
		writer: &tableWriter{
			db:        db,
			dialect:   converter.DialectSnowflake,
			types:     converter.NewTypeConverter(logger),
			schema:    cfg.Schema,
			batchSize: DefaultBatchSize,
			logger:    logger,
		},
	}
}

// Name identifies the sink
func (c *SnowflakeConnector) Name() string {
	return "snowflake"
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// Schema returns the export schema
func (c *SnowflakeConnector) Schema() string {
	return c.cfg.Schema
}

// Validate checks the session lands in the configured database and creates the schema
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var info sessionInfo
	err := c.db.GetContext(ctx, &info,
		`SELECT CURRENT_ROLE() AS "ROLE", CURRENT_DATABASE() AS "DATABASE", CURRENT_WAREHOUSE() AS "WAREHOUSE"`)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", info.Role.String),
		zap.String("database", info.Database.String),
		zap.String("warehouse", info.Warehouse.String))

	if !strings.EqualFold(info.Database.String, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			info.Database.String, c.cfg.Database)
	}

	if c.cfg.QueryTimeout > 0 {
		stmt := fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d", int(c.cfg.QueryTimeout.Seconds()))
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			c.logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if _, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+converter.QuoteIdentifier(c.cfg.Schema)); err != nil {
		return fmt.Errorf("failed to create/verify schema %s: %w", c.cfg.Schema, err)
	}
	return nil
}

// ExportTable replaces schema.name with the table's rows
func (c *SnowflakeConnector) ExportTable(ctx context.Context, name string, table *model.Table) (int64, error) {
	return c.writer.write(ctx, name, table)
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}
