// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Dialect selects the SQL flavour used for type names and quoting
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectSnowflake Dialect = "snowflake"
)

// TypeConverter maps wrangled columns onto SQL column types and driver arguments
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Longest text value that still gets a bounded VARCHAR
	MaxVarcharLength int
	// Size text columns from their longest value instead of using TEXT
	OptimizeStorage bool
	// Whether to send empty text cells as NULL
	EmptyStringAsNull bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		MaxVarcharLength:  1000,
		OptimizeStorage:   false,
		EmptyStringAsNull: true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// ColumnType returns the SQL type for a column in the given dialect
func (c *TypeConverter) ColumnType(col *model.Column, dialect Dialect) (string, error) {
	kind := c.StorageKind(col)
	switch dialect {
	case DialectPostgres:
		switch kind {
		case model.KindNumeric:
			return "DOUBLE PRECISION", nil
		case model.KindBoolean:
			return "BOOLEAN", nil
		case model.KindDatetime:
			return "TIMESTAMP", nil
		default:
			return c.textType(col, "TEXT"), nil
		}
	case DialectSnowflake:
		switch kind {
		case model.KindNumeric:
			return "FLOAT", nil
		case model.KindBoolean:
			return "BOOLEAN", nil
		case model.KindDatetime:
			return "TIMESTAMP_NTZ", nil
		default:
			return c.textType(col, "VARCHAR"), nil
		}
	default:
		return "", fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// GenerateColumnDefinitions creates column definitions for a CREATE TABLE statement
func (c *TypeConverter) GenerateColumnDefinitions(t *model.Table, dialect Dialect) ([]string, error) {
	defs := make([]string, 0, t.NumColumns())
	for _, col := range t.Columns() {
		sqlType, err := c.ColumnType(col, dialect)
		if err != nil {
			return nil, fmt.Errorf("failed to map column %s: %w", col.Name, err)
		}
		defs = append(defs, fmt.Sprintf("%s %s", QuoteIdentifier(col.Name), sqlType))
	}
	return defs, nil
}

// QuoteIdentifier quotes a table or column name; both dialects accept
// double-quoted identifiers with doubled inner quotes
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QualifiedName joins a schema and table into a quoted reference
func QualifiedName(schema, table string) string {
	if strings.TrimSpace(schema) == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
}
