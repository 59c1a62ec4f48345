// pkg/model/metadata.go
package model

import "fmt"

// Column is a named, typed sequence of cells
type Column struct {
	Name   string  // Column name
	Kind   Kind    // Logical type of the column
	Values []Value // One cell per row
}

// NewColumn creates a column of the given kind
func NewColumn(name string, kind Kind, values []Value) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// NewTextColumn creates a text column from raw strings.
// Empty strings become missing cells.
func NewTextColumn(name string, raw []string) *Column {
	values := make([]Value, len(raw))
	for i, s := range raw {
		if s == "" {
			values[i] = Null()
			continue
		}
		values[i] = TextValue(s)
	}
	return &Column{Name: name, Kind: KindText, Values: values}
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Values)
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	count := 0
	for _, v := range c.Values {
		if v.IsNull() {
			count++
		}
	}
	return count
}

// DistinctCount returns the number of distinct present values
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		seen[v.Key()] = struct{}{}
	}
	return len(seen)
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Kind: c.Kind, Values: values}
}

// WidenToText relabels the column as text and rewrites every present cell
// in its text form, so the column keeps a single kind
func (c *Column) WidenToText() {
	c.Kind = KindText
	for i, v := range c.Values {
		if !v.IsNull() && v.Kind() != KindText {
			c.Values[i] = TextValue(v.String())
		}
	}
}

// Table is an ordered list of uniquely named columns of equal length.
// A table with no columns has no rows.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable creates a table, checking that names are unique and lengths agree
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{}
	for _, col := range columns {
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// EmptyTable returns a table with no columns and no rows
func EmptyTable() *Table {
	return &Table{}
}

// AddColumn appends a column to the table
func (t *Table) AddColumn(col *Column) error {
	if col == nil {
		return fmt.Errorf("cannot add nil column")
	}
	if t.HasColumn(col.Name) {
		return fmt.Errorf("duplicate column name %q", col.Name)
	}
	if len(t.columns) > 0 && col.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", col.Name, col.Len(), t.rows)
	}
	t.columns = append(t.columns, col)
	t.rows = col.Len()
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.rows
}

// NumColumns returns the column count
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column {
	return t.columns
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of a column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Column returns a column by exact name.
// Returns nil if column not found
func (t *Table) Column(name string) *Column {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return t.columns[idx]
	}
	return nil
}

// HasColumn reports whether a column with the exact name exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Row returns the cells of one row in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Values[i]
	}
	return row
}

// RenameColumns replaces every column name. Names must stay unique.
func (t *Table) RenameColumns(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("got %d names for %d columns", len(names), len(t.columns))
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = struct{}{}
	}
	for i, name := range names {
		t.columns[i].Name = name
	}
	return nil
}

// SelectRows returns a new table holding the given rows in the given order
func (t *Table) SelectRows(indices []int) *Table {
	out := &Table{rows: len(indices)}
	for _, col := range t.columns {
		values := make([]Value, len(indices))
		for i, idx := range indices {
			values[i] = col.Values[idx]
		}
		out.columns = append(out.columns, &Column{Name: col.Name, Kind: col.Kind, Values: values})
	}
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{rows: t.rows}
	for _, col := range t.columns {
		out.columns = append(out.columns, col.Clone())
	}
	return out
}

// StringRows renders every row as strings, for export and tests
func (t *Table) StringRows() [][]string {
	rows := make([][]string, t.NumRows())
	for i := range rows {
		row := make([]string, len(t.columns))
		for j, col := range t.columns {
			row[j] = col.Values[i].String()
		}
		rows[i] = row
	}
	return rows
}
