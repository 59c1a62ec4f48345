// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
)

// ConnectorFactory creates the database sinks enabled in the configuration
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSnowflakeConnector creates a new Snowflake connector
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, fmt.Errorf("snowflake export is not configured")
	}
	f.logger.Info("Creating Snowflake connector")

	connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres export is not configured")
	}
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.cfg.ExportSchema, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}

// CreateConfigured connects every sink present in the configuration.
// Already opened connectors are closed when a later one fails.
func (f *ConnectorFactory) CreateConfigured(ctx context.Context) ([]DatabaseConnector, error) {
	var sinks []DatabaseConnector
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	if f.cfg.Postgres != nil {
		pg, err := f.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
	}

	if f.cfg.Snowflake != nil {
		sf, err := f.CreateSnowflakeConnector(ctx)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, sf)
	}

	return sinks, nil
}
