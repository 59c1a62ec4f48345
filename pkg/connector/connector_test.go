package connector

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

func exportTable(t *testing.T) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(
		model.NewColumn("id", model.KindNumeric, []model.Value{model.NumberValue(1), model.NumberValue(2), model.NumberValue(3)}),
		model.NewTextColumn("name", []string{"a", "", "c"}),
	)
	require.NoError(t, err)
	return tbl
}

func mockDB(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, driver), mock
}

func TestInsertSQL(t *testing.T) {
	got := InsertSQL(`"public"."t"`, []string{"a", "b c"}, 2)
	assert.Equal(t, `INSERT INTO "public"."t" ("a", "b c") VALUES (?, ?), (?, ?)`, got)
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL(`"s"."t"`, []string{`"a" TEXT`, `"b" BOOLEAN`})
	assert.Equal(t, "CREATE TABLE \"s\".\"t\" (\n\t\"a\" TEXT,\n\t\"b\" BOOLEAN\n)", got)
}

func TestRowsPerStatement(t *testing.T) {
	assert.Equal(t, DefaultBatchSize, rowsPerStatement(0, 3))
	assert.Equal(t, 10, rowsPerStatement(10, 3))
	assert.Equal(t, maxBindParams/100, rowsPerStatement(1000, 100))
	assert.Equal(t, 1, rowsPerStatement(5, maxBindParams*2))
}

func TestPostgresExportTable(t *testing.T) {
	db, mock := mockDB(t, "pgx")
	c := newPostgresConnector(db, &config.PostgresConfig{Database: "test"}, "", zaptest.NewLogger(t))
	c.writer.batchSize = 2

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "public"."people"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "public"."people"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."people" ("id", "name") VALUES ($1, $2), ($3, $4)`)).
		WithArgs(1.0, "a", 2.0, nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."people" ("id", "name") VALUES ($1, $2)`)).
		WithArgs(3.0, "c").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := c.ExportTable(context.Background(), "people", exportTable(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRollsBackOnFailure(t *testing.T) {
	db, mock := mockDB(t, "pgx")
	c := newPostgresConnector(db, nil, "staging", zaptest.NewLogger(t))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "staging"."people"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "staging"."people"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := c.ExportTable(context.Background(), "people", exportTable(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRejectsEmptyTable(t *testing.T) {
	db, _ := mockDB(t, "pgx")
	c := newPostgresConnector(db, nil, "", zaptest.NewLogger(t))

	_, err := c.ExportTable(context.Background(), "empty", model.EmptyTable())
	assert.Error(t, err)
}

func TestSnowflakeExportUsesQuestionPlaceholders(t *testing.T) {
	db, mock := mockDB(t, "snowflake")
	c := newSnowflakeConnector(db, &config.SnowflakeConfig{Database: "WRANGLER", Schema: "PUBLIC"}, zaptest.NewLogger(t))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "PUBLIC"."people"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`"id" FLOAT`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`VALUES (?, ?), (?, ?), (?, ?)`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := c.ExportTable(context.Background(), "people", exportTable(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "snowflake", c.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnowflakeValidateWrongDatabase(t *testing.T) {
	db, mock := mockDB(t, "snowflake")
	c := newSnowflakeConnector(db, &config.SnowflakeConfig{Database: "WRANGLER", Schema: "PUBLIC"}, zaptest.NewLogger(t))

	mock.ExpectQuery("SELECT CURRENT_ROLE").
		WillReturnRows(sqlmock.NewRows([]string{"ROLE", "DATABASE", "WAREHOUSE"}).
			AddRow("SYSADMIN", "OTHER", "WH"))

	err := c.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connected to wrong database")
}

func TestPostgresValidate(t *testing.T) {
	db, mock := mockDB(t, "pgx")
	c := newPostgresConnector(db, &config.PostgresConfig{Database: "test"}, "wrangled", zaptest.NewLogger(t))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16"))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "wrangled"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, c.Validate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordProcessingLog(t *testing.T) {
	db, mock := mockDB(t, "pgx")
	c := newPostgresConnector(db, nil, "", zaptest.NewLogger(t))
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	entries := []model.LogEntry{
		{Name: "Load files", Timestamp: now, Status: model.StatusSuccess, Details: "Loaded 2 files"},
		{Name: "Clean a", Timestamp: now, Status: model.StatusWarning, Warnings: []string{"w1"}},
	}

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "public"."wrangle_processing_log"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."wrangle_processing_log"`)).
		WithArgs("run-1", sqlmock.AnyArg(), "Load files", sqlmock.AnyArg(), "success", "Loaded 2 files", "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "public"."wrangle_processing_log"`)).
		WithArgs("run-1", sqlmock.AnyArg(), "Clean a", sqlmock.AnyArg(), "warning", "", `["w1"]`, "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, c.RecordProcessingLog(context.Background(), "run-1", entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactoryRequiresConfiguredSinks(t *testing.T) {
	f := NewConnectorFactory(&config.Config{}, zaptest.NewLogger(t))

	_, err := f.CreatePostgresConnector(context.Background())
	assert.Error(t, err)
	_, err = f.CreateSnowflakeConnector(context.Background())
	assert.Error(t, err)

	sinks, err := f.CreateConfigured(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sinks)
}

func TestApplyPoolAndPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	xdb := sqlx.NewDb(db, "pgx")

	ApplyPool(xdb, config.PoolConfig{MaxOpenConns: 3, MaxIdleConns: 1})
	assert.Equal(t, 3, xdb.Stats().MaxOpenConnections)

	mock.ExpectPing()
	require.NoError(t, PingWithTimeout(context.Background(), xdb, time.Second))
	LogConnectionStats(zaptest.NewLogger(t), "test", xdb.DB)
	assert.NoError(t, mock.ExpectationsWereMet())
}
