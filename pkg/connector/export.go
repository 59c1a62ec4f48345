// pkg/connector/export.go
package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/converter"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// maxBindParams stays under the PostgreSQL limit of 65535 parameters per statement
const maxBindParams = 65000

// DefaultBatchSize is the number of rows per INSERT statement
const DefaultBatchSize = 1000

// tableWriter holds what both dialects need to replace a table
type tableWriter struct {
	db        *sqlx.DB
	dialect   converter.Dialect
	types     *converter.TypeConverter
	schema    string
	batchSize int
	logger    *zap.Logger
}

// CreateTableSQL builds the DDL for a wrangled table
func CreateTableSQL(qualified string, columnDefs []string) string {
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", qualified, strings.Join(columnDefs, ",\n\t"))
}

// InsertSQL builds a multi-row INSERT with '?' placeholders; callers rebind
// to the driver's placeholder style
func InsertSQL(qualified string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = converter.QuoteIdentifier(c)
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = row
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualified, strings.Join(quoted, ", "), strings.Join(values, ", "))
}

// rowsPerStatement caps the batch so one statement never exceeds the bind limit
func rowsPerStatement(batchSize, columns int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if columns > 0 && batchSize*columns > maxBindParams {
		batchSize = maxBindParams / columns
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return batchSize
}

// write drops and recreates schema.name, then inserts every row in one transaction
func (w *tableWriter) write(ctx context.Context, name string, table *model.Table) (int64, error) {
	if table.NumColumns() == 0 {
		return 0, fmt.Errorf("table %s has no columns", name)
	}

	qualified := converter.QualifiedName(w.schema, name)
	defs, err := w.types.GenerateColumnDefinitions(table, w.dialect)
	if err != nil {
		return 0, fmt.Errorf("failed to generate column definitions: %w", err)
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
		return 0, fmt.Errorf("failed to drop table %s: %w", qualified, err)
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(qualified, defs)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", qualified, err)
	}

	columns := table.ColumnNames()
	kinds := w.types.StorageKinds(table)
	batch := rowsPerStatement(w.batchSize, len(columns))
	total := table.NumRows()
	var inserted int64

	for start := 0; start < total; start += batch {
		end := start + batch
		if end > total {
			end = total
		}

		args := make([]interface{}, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			args = append(args, w.types.RowArgs(table, i, kinds)...)
		}

		query := tx.Rebind(InsertSQL(qualified, columns, end-start))
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("batch insert into %s failed: %w", qualified, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			w.logger.Warn("Couldn't get rows affected", zap.Error(err))
			affected = int64(end - start)
		}
		inserted += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export of %s: %w", qualified, err)
	}

	w.logger.Info("Exported table",
		zap.String("table", qualified),
		zap.Int64("rows", inserted),
		zap.Int("columns", len(columns)))
	return inserted, nil
}
