// pkg/model/cleaning.go
package model

// CleaningOperation records one cleaning stage applied to one column
type CleaningOperation struct {
	TableName     string // Dataset name the column belongs to
	ColumnName    string // Column that was cleaned (empty for table-wide stages)
	Operation     string // Stage that ran (e.g., "coerce", "format_datetime")
	FromKind      Kind   // Kind before the stage
	ToKind        Kind   // Kind after the stage
	CellsChanged  int    // Cells whose value changed
	CellsNulled   int    // Present cells that became missing
	RowsRemoved   int    // Rows removed by table-wide stages
	CleaningNotes string // Free-form detail for the processing log
}

// Lossy reports whether the stage turned present cells into missing ones
func (op CleaningOperation) Lossy() bool {
	return op.CellsNulled > 0
}
