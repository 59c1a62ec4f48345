package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.Equal(t, "", Null().String())

	n := NumberValue(25)
	f, ok := n.Number()
	require.True(t, ok)
	assert.Equal(t, 25.0, f)
	assert.Equal(t, "25", n.String())
	assert.Equal(t, "2.5", NumberValue(2.5).String())

	_, ok = n.Text()
	assert.False(t, ok, "a number is not text")

	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2023-01-02 03:04:05", TimeValue(ts).String())
	assert.Equal(t, "true", BoolValue(true).String())
}

func TestValueKeyDistinguishesKinds(t *testing.T) {
	assert.False(t, TextValue("1").Equal(NumberValue(1)))
	assert.True(t, NumberValue(1).Equal(NumberValue(1.0)))
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(TextValue("")))
}

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable(
		NewTextColumn("a", []string{"1", "2"}),
		NewTextColumn("b", []string{"1"}),
	)
	assert.Error(t, err)

	_, err = NewTable(
		NewTextColumn("a", []string{"1"}),
		NewTextColumn("a", []string{"2"}),
	)
	assert.Error(t, err)
}

func TestTableAccessors(t *testing.T) {
	tbl, err := NewTable(
		NewTextColumn("id", []string{"1", "2", ""}),
		NewTextColumn("name", []string{"a", "b", "c"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())
	assert.Equal(t, 1, tbl.Column("id").NullCount())
	assert.Equal(t, 2, tbl.Column("id").DistinctCount())
	assert.Nil(t, tbl.Column("missing"))

	sub := tbl.SelectRows([]int{2, 0})
	assert.Equal(t, [][]string{{"", "c"}, {"1", "a"}}, sub.StringRows())

	clone := tbl.Clone()
	clone.Column("name").Values[0] = TextValue("changed")
	assert.Equal(t, "a", tbl.Column("name").Values[0].String())

	assert.Equal(t, 0, EmptyTable().NumRows())
}

func TestRenameColumnsRequiresUniqueNames(t *testing.T) {
	tbl, err := NewTable(NewTextColumn("a", nil), NewTextColumn("b", nil))
	require.NoError(t, err)
	assert.Error(t, tbl.RenameColumns([]string{"x", "x"}))
	require.NoError(t, tbl.RenameColumns([]string{"x", "y"}))
	assert.Equal(t, []string{"x", "y"}, tbl.ColumnNames())
}

func TestCollectionKeepsInsertionOrder(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add("zeta", EmptyTable()))
	require.NoError(t, c.Add("alpha", EmptyTable()))
	assert.Error(t, c.Add("zeta", EmptyTable()))

	assert.Equal(t, []string{"zeta", "alpha"}, c.Names())
	c.Set("zeta", EmptyTable())
	c.Set("beta", EmptyTable())
	assert.Equal(t, []string{"zeta", "alpha", "beta"}, c.Names())
	assert.Equal(t, 3, c.Len())
}

func TestFormatProcessingLog(t *testing.T) {
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	log := NewProcessingLog().WithClock(func() time.Time { return stamp })
	log.Success("Clean customers", "Processed 3 rows, 2 columns")
	log.Warn("Merge validation", "", "customers is missing columns: [c]")
	log.Fail("Read broken", "file not found")

	require.True(t, log.HasErrors())
	require.NotEmpty(t, log.RunID())

	text := FormatProcessingLog(log.Entries(), stamp)
	assert.True(t, strings.HasPrefix(text, strings.Repeat("=", 60)+"\nDATA WRANGLER PROCESSING LOG\n"))
	assert.Contains(t, text, "Operation 1: Clean customers\n  Timestamp: 2024-05-01T12:00:00.000000\n  Status: success\n  Details: Processed 3 rows, 2 columns\n")
	assert.Contains(t, text, "Operation 2: Merge validation\n")
	assert.Contains(t, text, "  Warnings:\n    - customers is missing columns: [c]\n")
	assert.Contains(t, text, "Operation 3: Read broken\n  Timestamp: 2024-05-01T12:00:00.000000\n  Status: error\n  Errors:\n    - file not found\n")
}
