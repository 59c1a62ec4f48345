package cleaner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

func textTable(t *testing.T, headers []string, rows ...[]string) *model.Table {
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

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		"First Name":        "first_name",
		"Last-Name":         "last_name",
		"  Email Address  ": "email_address",
		"Phone#":            "phone",
		"a__b":              "a_b",
		"Total (USD)":       "total_usd",
		"CamelCase":         "camelcase",
		"tab\tsep":          "tab_sep",
		"***":               "",
		"Straße Nr.":        "straße_nr",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CanonicalName(raw), raw)
	}
}

func TestCanonicalNameIsIdempotent(t *testing.T) {
	inputs := []string{
		"First Name", "Last-Name", "__x__", "  ", "A  B\t\tC", "weird!@#$%^&*()name",
		"Ünïcödé Header", "x-_-y", "123 abc", "İstanbul", "already_canonical",
	}
	for _, in := range inputs {
		once := CanonicalName(in)
		assert.Equal(t, once, CanonicalName(once), in)
	}
}

func TestCanonicalNamesFallbackAndCollisions(t *testing.T) {
	got := CanonicalNames([]string{"Name", "name", "!!!", "NAME", "name_2"})
	assert.Equal(t, []string{"name", "name_2", "column_3", "name_3", "name_2_2"}, got)
}

func TestInferKind(t *testing.T) {
	nf := DefaultNumberFormat()
	cases := []struct {
		values []string
		want   model.Kind
	}{
		{[]string{"1", "2", "3"}, model.KindNumeric},
		{[]string{"1.5", "", "-2"}, model.KindNumeric},
		{[]string{"2023-01-01", "2023-01-02"}, model.KindDatetime},
		{[]string{"01/15/2023", "2023-02-01 10:30:00"}, model.KindDatetime},
		{[]string{"true", "false", "TRUE", "False"}, model.KindBoolean},
		{[]string{"yes", "no", "yes"}, model.KindBoolean},
		{[]string{"yes", "no", "true"}, model.KindText},
		{[]string{"maybe", "no"}, model.KindText},
		{[]string{"", ""}, model.KindText},
		{[]string{"1", "abc"}, model.KindText},
		{[]string{"1e3", "+.5", "7."}, model.KindNumeric},
		{[]string{"1_000", "2023_01"}, model.KindText},
		{[]string{"0x1p4", "0X10"}, model.KindText},
		{[]string{"Infinity", "inf"}, model.KindText},
		{[]string{"NaN", "1"}, model.KindText},
	}
	for _, tc := range cases {
		col := model.NewTextColumn("c", tc.values)
		assert.Equal(t, tc.want, InferKind(col, nf), "%v", tc.values)
	}
}

func TestParseNumberRejectsLiteralSyntax(t *testing.T) {
	nf := DefaultNumberFormat()
	for _, s := range []string{"1_000", "0x1p4", "0b101", "Infinity", "-inf", "nan", "1e", "."} {
		_, err := parseNumber(s, nf)
		assert.Error(t, err, s)
	}
	f, err := parseNumber(" -12.5e2 ", nf)
	require.NoError(t, err)
	assert.Equal(t, -1250.0, f)
}

func TestInferKindKeepsNonTextColumns(t *testing.T) {
	col := model.NewColumn("n", model.KindNumeric, []model.Value{model.NumberValue(1)})
	assert.Equal(t, model.KindNumeric, InferKind(col, DefaultNumberFormat()))
}

func TestInferKindHonoursSeparators(t *testing.T) {
	col := model.NewTextColumn("amount", []string{"1.234,50", "99,9"})
	nf := NumberFormat{Decimal: ",", Thousands: "."}
	require.Equal(t, model.KindNumeric, InferKind(col, nf))

	CoerceColumn(col, model.KindNumeric, nf)
	f, ok := col.Values[0].Number()
	require.True(t, ok)
	assert.InDelta(t, 1234.5, f, 1e-9)
}

func TestCoerceIsPerCell(t *testing.T) {
	tbl := textTable(t, []string{"n", "b"},
		[]string{"1", "yes"},
		[]string{"oops", "maybe"},
		[]string{"", "N"},
	)

	outcomes := Coerce(tbl, map[string]model.Kind{
		"n":       model.KindNumeric,
		"b":       model.KindBoolean,
		"missing": model.KindNumeric,
	}, DefaultNumberFormat())
	require.Len(t, outcomes, 3)

	assert.Equal(t, ColumnOutcome{Column: "n", From: model.KindText, To: model.KindNumeric, Converted: 1, BecameMissing: 1}, outcomes[0])
	assert.Equal(t, 1, outcomes[1].BecameMissing)
	assert.True(t, outcomes[2].Skipped)
	assert.NotEmpty(t, outcomes[0].Warning())

	n := tbl.Column("n")
	assert.Equal(t, model.KindNumeric, n.Kind)
	assert.True(t, n.Values[1].IsNull())
	assert.True(t, n.Values[2].IsNull())

	b := tbl.Column("b")
	v, ok := b.Values[0].Bool()
	assert.True(t, ok && v)
	assert.True(t, b.Values[1].IsNull())
	v, ok = b.Values[2].Bool()
	assert.True(t, ok)
	assert.False(t, v)
}

func TestCoerceToCurrentKindIsNoop(t *testing.T) {
	col := model.NewTextColumn("t", []string{" a ", "b"})
	out := CoerceColumn(col, model.KindText, DefaultNumberFormat())
	assert.False(t, out.Changed())
	assert.Equal(t, " a ", col.Values[0].String())
}

func TestTrimWhitespace(t *testing.T) {
	tbl := textTable(t, []string{"a", "b"},
		[]string{"  x ", "\ty\n"},
		[]string{"z", ""},
	)
	num := model.NewColumn("n", model.KindNumeric, []model.Value{model.NumberValue(1), model.NumberValue(2)})
	require.NoError(t, tbl.AddColumn(num))

	assert.Equal(t, 2, TrimWhitespace(tbl))
	for _, col := range tbl.Columns() {
		if col.Kind != model.KindText {
			continue
		}
		for _, v := range col.Values {
			s := v.String()
			assert.Equal(t, strings.TrimSpace(s), s)
		}
	}
}

func TestApplyNullPolicyDrop(t *testing.T) {
	tbl := textTable(t, []string{"a", "b"},
		[]string{"1", "x"},
		[]string{"", "y"},
		[]string{"3", ""},
		[]string{"4", "z"},
	)
	out, dropped, err := ApplyNullPolicy(tbl, NullDrop, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.LessOrEqual(t, out.NumRows(), tbl.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		for _, v := range out.Row(i) {
			assert.False(t, v.IsNull())
		}
	}
}

func TestApplyNullPolicyFill(t *testing.T) {
	tbl := textTable(t, []string{"a", "b"},
		[]string{"1", ""},
		[]string{"", "y"},
	)
	fill := model.NumberValue(0)
	out, filled, err := ApplyNullPolicy(tbl, NullFill, &fill)
	require.NoError(t, err)
	assert.Equal(t, 2, filled)
	assert.True(t, out.Column("b").Values[0].Equal(model.TextValue("0")))
	assert.True(t, out.Column("a").Values[1].Equal(model.TextValue("0")))
	assert.Equal(t, model.KindText, out.Column("a").Kind)

	// a text fill widens a numeric column to text
	num, err := model.NewTable(model.NewColumn("n", model.KindNumeric, []model.Value{model.NumberValue(1.5), model.Null()}))
	require.NoError(t, err)
	dash := model.TextValue("-")
	out, filled, err = ApplyNullPolicy(num, NullFill, &dash)
	require.NoError(t, err)
	assert.Equal(t, 1, filled)
	col := out.Column("n")
	assert.Equal(t, model.KindText, col.Kind)
	for _, v := range col.Values {
		assert.Equal(t, model.KindText, v.Kind())
	}
	assert.Equal(t, []string{"1.5", "-"}, []string{col.Values[0].String(), col.Values[1].String()})

	// a fill of the column's own kind keeps it
	zero := model.NumberValue(0)
	num, err = model.NewTable(model.NewColumn("n", model.KindNumeric, []model.Value{model.Null()}))
	require.NoError(t, err)
	out, _, err = ApplyNullPolicy(num, NullFill, &zero)
	require.NoError(t, err)
	assert.Equal(t, model.KindNumeric, out.Column("n").Kind)

	_, filled, err = ApplyNullPolicy(textTable(t, []string{"a"}, []string{""}), NullFill, nil)
	require.NoError(t, err)
	assert.Zero(t, filled)

	_, _, err = ApplyNullPolicy(tbl, NullPolicy("purge"), nil)
	assert.ErrorIs(t, err, ErrUnknownNullPolicy)
}

func TestRemoveDuplicatesIsIdempotent(t *testing.T) {
	tbl := textTable(t, []string{"a", "b"},
		[]string{"1", "x"},
		[]string{"1", "x"},
		[]string{"2", "x"},
		[]string{"", ""},
		[]string{"", ""},
	)
	once, removed, err := RemoveDuplicates(tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, [][]string{{"1", "x"}, {"2", "x"}, {"", ""}}, once.StringRows())

	twice, removed, err := RemoveDuplicates(once, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, once.StringRows(), twice.StringRows())
}

func TestRemoveDuplicatesSubset(t *testing.T) {
	tbl := textTable(t, []string{"a", "b"},
		[]string{"1", "x"},
		[]string{"2", "x"},
		[]string{"1", "y"},
	)
	out, removed, err := RemoveDuplicates(tbl, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, [][]string{{"1", "x"}, {"1", "y"}}, out.StringRows())

	_, _, err = RemoveDuplicates(tbl, []string{"nope"})
	assert.Error(t, err)
}

func TestDetectDatetimeColumns(t *testing.T) {
	tbl := textTable(t, []string{"when", "mixed", "name"},
		[]string{"2023-01-01", "2023-01-01", "alice"},
		[]string{"2023-01-02 10:00:00", "n/a", "bob"},
		[]string{"01/03/2023", "later", "carol"},
	)
	ts := model.NewColumn("stamp", model.KindDatetime, []model.Value{
		model.TimeValue(time.Now()), model.Null(), model.Null(),
	})
	require.NoError(t, tbl.AddColumn(ts))

	assert.Equal(t, []string{"when", "stamp"}, DetectDatetimeColumns(tbl, 100))
}

func TestFormatTemporalColumn(t *testing.T) {
	col := model.NewTextColumn("d", []string{"2023-01-05", "03/15/2023 08:30:00", "garbage", ""})
	nulled := FormatTemporalColumn(col, DefaultDatetimeFormat)
	assert.Equal(t, 1, nulled)
	assert.Equal(t, model.KindText, col.Kind)
	assert.Equal(t, "2023-01-05 00:00:00", col.Values[0].String())
	assert.Equal(t, "2023-03-15 08:30:00", col.Values[1].String())
	assert.True(t, col.Values[2].IsNull())
	assert.True(t, col.Values[3].IsNull())
}

func TestCleanPipeline(t *testing.T) {
	raw := textTable(t, []string{"First Name", "Last-Name", "Age", "Active", "Joined"},
		[]string{" Alice ", "Smith", "30", "yes", "2023-01-01"},
		[]string{"Bob", " Jones", "25", "no", "2023-02-15"},
		[]string{" Alice ", "Smith", "30", "yes", "2023-01-01"},
	)
	dc, err := NewDataCleaner(DefaultOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	res, err := dc.Clean("people", raw)
	require.NoError(t, err)

	out := res.Table
	assert.Equal(t, []string{"first_name", "last_name", "age", "active", "joined"}, out.ColumnNames())
	assert.Equal(t, 2, out.NumRows(), "duplicate row removed")
	assert.Equal(t, "Alice", out.Column("first_name").Values[0].String())
	assert.Equal(t, model.KindNumeric, out.Column("age").Kind)
	assert.Equal(t, model.KindBoolean, out.Column("active").Kind)
	assert.Equal(t, model.KindText, out.Column("joined").Kind, "formatted datetimes are text")
	assert.Equal(t, "2023-01-01 00:00:00", out.Column("joined").Values[0].String())

	assert.Equal(t, "First Name", raw.ColumnNames()[0], "input is not modified")

	entry := res.LogEntry("people")
	assert.Equal(t, "Clean people", entry.Name)
	assert.Equal(t, "Processed 3 rows, 5 columns", entry.Details)
	assert.Equal(t, model.StatusSuccess, entry.Status)
}

func TestCleanExplicitColumnsAndMissingNames(t *testing.T) {
	raw := textTable(t, []string{"Order Date", "Shipped"},
		[]string{"2024-03-01 10:00:00", "2024-03-02 11:00:00"},
	)
	opts := DefaultOptions()
	opts.DateColumns = []string{"Order Date"}
	opts.DatetimeColumns = []string{"shipped", "ghost"}
	opts.DatetimeFormat = "%d/%m/%Y %H:%M"

	dc, err := NewDataCleaner(opts, nil)
	require.NoError(t, err)
	res, err := dc.Clean("orders", raw)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", res.Table.Column("order_date").Values[0].String())
	assert.Equal(t, "02/03/2024 11:00", res.Table.Column("shipped").Values[0].String())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "ghost")
	assert.Equal(t, model.StatusWarning, res.LogEntry("orders").Status)
}

func TestFormattedDatesAreNotDetectedAgain(t *testing.T) {
	raw := textTable(t, []string{"d", "seen"},
		[]string{"01/02/2023", "2023-05-06 07:08:09"},
		[]string{"03/04/2023", "2023-05-07 07:08:09"},
	)
	opts := DefaultOptions()
	opts.DateColumns = []string{"d"}

	dc, err := NewDataCleaner(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	res, err := dc.Clean("t", raw)
	require.NoError(t, err)

	assert.Equal(t, "2023-01-02", res.Table.Column("d").Values[0].String())
	assert.Equal(t, "2023-05-06 07:08:09", res.Table.Column("seen").Values[0].String())
	for _, op := range res.Operations {
		if op.Operation == "format_datetime" {
			assert.Equal(t, "seen", op.ColumnName)
		}
	}
}

func TestCleanDisabledStages(t *testing.T) {
	raw := textTable(t, []string{"A B"}, []string{" 1 "}, []string{" 1 "})
	dc, err := NewDataCleaner(Options{NullPolicy: NullKeep}, nil)
	require.NoError(t, err)

	res, err := dc.Clean("t", raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"A B"}, res.Table.ColumnNames())
	assert.Equal(t, 2, res.Table.NumRows())
	assert.Equal(t, " 1 ", res.Table.Column("A B").Values[0].String())
}

func TestNewDataCleanerRejectsUnknownPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.NullPolicy = "sometimes"
	_, err := NewDataCleaner(opts, nil)
	assert.ErrorIs(t, err, ErrUnknownNullPolicy)
}
