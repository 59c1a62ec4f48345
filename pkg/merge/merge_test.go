package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

func table(t *testing.T, headers []string, rows ...[]string) *model.Table {
	t.Helper()
	cols := make([]*model.Column, len(headers))
	for j, h := range headers {
		raw := make([]string, len(rows))
		for i, row := range rows {
			raw[i] = row[j]
		}
		cols[j] = model.NewTextColumn(h, raw)
	}
	tbl, err := model.NewTable(cols...)
	require.NoError(t, err)
	return tbl
}

func collection(t *testing.T, pairs ...interface{}) *model.Collection {
	t.Helper()
	c := model.NewCollection()
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, c.Add(pairs[i].(string), pairs[i+1].(*model.Table)))
	}
	return c
}

func TestCheckCompatibility(t *testing.T) {
	ab := table(t, []string{"A", "B"}, []string{"1", "3"})
	ab2 := table(t, []string{"B", "A"}, []string{"4", "2"})
	ac := table(t, []string{"A", "C"}, []string{"5", "7"})

	ok, issues := CheckCompatibility(collection(t, "file1", ab, "file2", ab2))
	assert.True(t, ok)
	assert.Empty(t, issues)

	ok, issues = CheckCompatibility(collection(t, "file1", ab, "file2", ac))
	assert.False(t, ok)
	assert.Equal(t, []string{
		"file2 is missing columns: [B]",
		"file2 has extra columns: [C]",
	}, issues)

	ok, issues = CheckCompatibility(collection(t, "only", ab))
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestAppendPadsMissingColumns(t *testing.T) {
	first := table(t, []string{"A", "B"}, []string{"1", "3"}, []string{"2", "4"})
	second := table(t, []string{"A", "C"}, []string{"5", "7"}, []string{"6", "8"})

	out, err := Append(collection(t, "file1", first, "file2", second))
	require.NoError(t, err)

	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []string{"A", "B", "C"}, out.ColumnNames())
	assert.Equal(t, [][]string{
		{"1", "3", ""},
		{"2", "4", ""},
		{"5", "", "7"},
		{"6", "", "8"},
	}, out.StringRows())
	assert.True(t, out.Column("C").Values[0].IsNull())
	assert.True(t, out.Column("B").Values[3].IsNull())
}

func TestAppendMixedKindsBecomeText(t *testing.T) {
	num, err := model.NewTable(model.NewColumn("v", model.KindNumeric, []model.Value{model.NumberValue(1)}))
	require.NoError(t, err)
	txt := table(t, []string{"v"}, []string{"x"})

	out, err := Append(collection(t, "a", num, "b", txt))
	require.NoError(t, err)
	assert.Equal(t, model.KindText, out.Column("v").Kind)
	assert.Equal(t, [][]string{{"1"}, {"x"}}, out.StringRows())
}

func TestMixedKindMergesKeepOneKindPerColumn(t *testing.T) {
	num, err := model.NewTable(model.NewColumn("v", model.KindNumeric, []model.Value{model.NumberValue(1), model.Null()}))
	require.NoError(t, err)
	txt := table(t, []string{"v"}, []string{"1"})

	out, err := Append(collection(t, "a", num, "b", txt))
	require.NoError(t, err)
	col := out.Column("v")
	assert.Equal(t, model.KindText, col.Kind)
	assert.True(t, col.Values[1].IsNull(), "missing cells stay missing")
	for i, v := range col.Values {
		if !v.IsNull() {
			assert.Equal(t, col.Kind, v.Kind(), "row %d", i)
		}
	}
	assert.Equal(t, 1, col.DistinctCount())

	// source tables are untouched
	assert.Equal(t, model.KindNumeric, num.Column("v").Values[0].Kind())

	left, err := model.NewTable(
		model.NewColumn("id", model.KindNumeric, []model.Value{model.NumberValue(1), model.NumberValue(2)}),
		model.NewTextColumn("name", []string{"a", "b"}),
	)
	require.NoError(t, err)
	right := table(t, []string{"id", "score"}, []string{"2", "9"}, []string{"3", "8"})

	joined, err := Join(left, right, "id", JoinOuter, "right")
	require.NoError(t, err)
	id := joined.Column("id")
	assert.Equal(t, model.KindText, id.Kind)
	for _, v := range id.Values {
		assert.Equal(t, model.KindText, v.Kind())
	}
	assert.Equal(t, [][]string{{"1", "a", ""}, {"2", "b", "9"}, {"3", "", "8"}}, joined.StringRows())
}

func TestMergeEdgeCases(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	out, err := e.Merge(model.NewCollection(), ModeAppend, JoinOuter)
	require.NoError(t, err)
	assert.Zero(t, out.NumRows())
	assert.Zero(t, out.NumColumns())

	only := table(t, []string{"A"}, []string{"1"})
	out, err = e.Merge(collection(t, "one", only), ModeJoin, JoinInner)
	require.NoError(t, err)
	assert.Same(t, only, out)

	_, err = e.Merge(collection(t, "one", only), Mode("zip"), JoinInner)
	assert.ErrorIs(t, err, ErrUnknownMergeMode)

	_, err = e.Merge(collection(t, "one", only), ModeJoin, JoinType("cross"))
	assert.ErrorIs(t, err, ErrUnknownJoinType)
}

func TestJoinTypes(t *testing.T) {
	left := table(t, []string{"id", "name"},
		[]string{"1", "alice"},
		[]string{"2", "bob"},
		[]string{"3", "carol"},
	)
	right := table(t, []string{"id", "city"},
		[]string{"2", "paris"},
		[]string{"3", "rome"},
		[]string{"4", "oslo"},
	)

	cases := map[JoinType][][]string{
		JoinInner: {{"2", "bob", "paris"}, {"3", "carol", "rome"}},
		JoinLeft:  {{"1", "alice", ""}, {"2", "bob", "paris"}, {"3", "carol", "rome"}},
		JoinRight: {{"2", "bob", "paris"}, {"3", "carol", "rome"}, {"4", "", "oslo"}},
		JoinOuter: {{"1", "alice", ""}, {"2", "bob", "paris"}, {"3", "carol", "rome"}, {"4", "", "oslo"}},
	}
	for jt, want := range cases {
		out, err := Join(left, right, "id", jt, "cities")
		require.NoError(t, err, jt)
		assert.Equal(t, []string{"id", "name", "city"}, out.ColumnNames(), jt)
		assert.Equal(t, want, out.StringRows(), jt)
	}
}

func TestJoinSuffixesCollidingColumns(t *testing.T) {
	left := table(t, []string{"id", "value"}, []string{"1", "a"})
	right := table(t, []string{"id", "value"}, []string{"1", "b"})

	out, err := Join(left, right, "id", JoinInner, "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value", "value_sales"}, out.ColumnNames())
	assert.Equal(t, [][]string{{"1", "a", "b"}}, out.StringRows())
}

func TestJoinMultipliesMatches(t *testing.T) {
	left := table(t, []string{"k", "l"}, []string{"x", "1"}, []string{"x", "2"})
	right := table(t, []string{"k", "r"}, []string{"x", "a"}, []string{"x", "b"})

	out, err := Join(left, right, "k", JoinInner, "r")
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
}

func TestJoinKeyUsesLeftColumnOrder(t *testing.T) {
	left := table(t, []string{"b", "a"}, []string{"1", "2"})
	right := table(t, []string{"a", "b"}, []string{"2", "1"})
	assert.Equal(t, "b", JoinKey(left, right))
	assert.Equal(t, "", JoinKey(left, table(t, []string{"z"}, []string{"1"})))
}

func TestMergeJoinWithoutCommonColumns(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	left := table(t, []string{"a"}, []string{"1"}, []string{"2"})
	right := table(t, []string{"b"}, []string{"x"})

	out, err := e.Merge(collection(t, "l", left, "r", right), ModeJoin, JoinOuter)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.ColumnNames())
	assert.Equal(t, [][]string{{"1", "x"}, {"2", ""}}, out.StringRows())
}

func TestMergeJoinChainsTables(t *testing.T) {
	e := NewEngine(nil)
	people := table(t, []string{"id", "name"}, []string{"1", "ann"}, []string{"2", "ben"})
	ages := table(t, []string{"id", "age"}, []string{"1", "40"}, []string{"2", "35"})
	towns := table(t, []string{"name", "town"}, []string{"ben", "york"})

	out, err := e.Merge(collection(t, "people", people, "ages", ages, "towns", towns), ModeJoin, JoinLeft)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age", "town"}, out.ColumnNames())
	assert.Equal(t, [][]string{{"1", "ann", "40", ""}, {"2", "ben", "35", "york"}}, out.StringRows())
}

func TestPrepareExport(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	first := table(t, []string{"A", "B"}, []string{"1", "2"})
	second := table(t, []string{"A", "C"}, []string{"3", "4"})
	c := collection(t, "first", first, "second", second)

	same, err := e.PrepareExport(c, ModePerSheet)
	require.NoError(t, err)
	assert.Same(t, c, same)

	single, err := e.PrepareExport(c, ModeSingleSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{MergedTableName}, single.Names())
	merged, _ := single.Get(MergedTableName)
	assert.Equal(t, 2, merged.NumRows())
	assert.Equal(t, []string{"A", "B", "C"}, merged.ColumnNames())

	_, err = e.PrepareExport(c, ModeJoin)
	assert.ErrorIs(t, err, ErrUnknownMergeMode)
}

func TestValidateMergeOperation(t *testing.T) {
	ok, warnings := ValidateMergeOperation(model.NewCollection(), ModeSingleSheet)
	assert.False(t, ok)
	assert.Equal(t, []string{"No data to merge"}, warnings)

	one := collection(t, "one", table(t, []string{"A"}, []string{"1"}))
	ok, warnings = ValidateMergeOperation(one, ModeJoin)
	assert.True(t, ok)
	assert.Empty(t, warnings)

	same := collection(t,
		"a", table(t, []string{"A"}, []string{"1"}),
		"b", table(t, []string{"A"}, []string{"2"}),
	)
	ok, _ = ValidateMergeOperation(same, ModeSingleSheet)
	assert.True(t, ok)

	ok, warnings = ValidateMergeOperation(same, ModeJoin)
	assert.False(t, ok)
	assert.Equal(t, []string{"Join operations may result in data multiplication"}, warnings)

	differ := collection(t,
		"a", table(t, []string{"A"}, []string{"1"}),
		"b", table(t, []string{"B"}, []string{"2"}),
	)
	ok, warnings = ValidateMergeOperation(differ, ModePerSheet)
	assert.True(t, ok)
	assert.Empty(t, warnings)

	ok, warnings = ValidateMergeOperation(differ, ModeSingleSheet)
	assert.False(t, ok)
	assert.Len(t, warnings, 2)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Single_Sheet ")
	require.NoError(t, err)
	assert.Equal(t, ModeSingleSheet, m)

	_, err = ParseMode("zip")
	assert.ErrorIs(t, err, ErrUnknownMergeMode)

	_, err = ParseJoinType("full")
	assert.ErrorIs(t, err, ErrUnknownJoinType)
}
