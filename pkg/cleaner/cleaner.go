// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Options toggles and parameterises each cleaning stage
type Options struct {
	StandardizeColumns  bool
	InferTypes          bool
	TrimWhitespace      bool
	NullPolicy          NullPolicy
	FillValue           *model.Value // Only used with NullFill
	DateColumns         []string     // Explicit date-only columns
	DateFormat          string
	DatetimeColumns     []string // Explicit datetime columns; disables auto-detection
	DatetimeFormat      string
	AutoDetectDatetime  bool
	DetectionSampleSize int
	RemoveDuplicates    bool
	DuplicateSubset     []string
	Numbers             NumberFormat
}

// DefaultOptions returns the default pipeline configuration
func DefaultOptions() Options {
	return Options{
		StandardizeColumns:  true,
		InferTypes:          true,
		TrimWhitespace:      true,
		NullPolicy:          NullKeep,
		DateFormat:          DefaultDateFormat,
		DatetimeFormat:      DefaultDatetimeFormat,
		AutoDetectDatetime:  true,
		DetectionSampleSize: DefaultDetectionSample,
		RemoveDuplicates:    true,
		Numbers:             DefaultNumberFormat(),
	}
}

// Validate checks enum values before any table is touched
func (o Options) Validate() error {
	if _, err := ParseNullPolicy(string(o.NullPolicy)); err != nil {
		return err
	}
	if o.Numbers.Decimal != "" && o.Numbers.Decimal == o.Numbers.Thousands {
		return errors.New("decimal and thousands separators must differ")
	}
	return nil
}

// Result is the cleaned table plus everything the pipeline recorded about it
type Result struct {
	Table      *model.Table
	Operations []model.CleaningOperation
	Outcomes   []ColumnOutcome
	Warnings   []string
	RowsIn     int
	ColumnsIn  int
}

// LogEntry summarises the result as a processing log entry
func (r *Result) LogEntry(name string) model.LogEntry {
	entry := model.LogEntry{
		Name:     "Clean " + name,
		Status:   model.StatusSuccess,
		Details:  fmt.Sprintf("Processed %d rows, %d columns", r.RowsIn, r.ColumnsIn),
		Warnings: r.Warnings,
	}
	if len(r.Warnings) > 0 {
		entry.Status = model.StatusWarning
	}
	return entry
}

// DataCleaner runs the cleaning pipeline over one table at a time
type DataCleaner struct {
	opts   Options
	logger *zap.Logger
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(opts Options, logger *zap.Logger) (*DataCleaner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cleaning options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NullPolicy == "" {
		opts.NullPolicy = NullKeep
	}
	if opts.DatetimeFormat == "" {
		opts.DatetimeFormat = DefaultDatetimeFormat
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.Numbers.Decimal == "" {
		opts.Numbers.Decimal = "."
	}

	return &DataCleaner{
		opts:   opts,
		logger: logger,
	}, nil
}

// Options returns the effective options
func (c *DataCleaner) Options() Options {
	return c.opts
}

// Clean runs every enabled stage in fixed order on a copy of the table.
// Column-level failures become warnings; the input table is not modified.
func (c *DataCleaner) Clean(name string, table *model.Table) (*Result, error) {
	if table == nil {
		return nil, errors.New("table cannot be nil")
	}

	res := &Result{
		Table:     table.Clone(),
		RowsIn:    table.NumRows(),
		ColumnsIn: table.NumColumns(),
	}
	log := c.logger.With(zap.String("table", name))

	// 1. Column names
	if c.opts.StandardizeColumns {
		changed, err := StandardizeColumnNames(res.Table)
		if err != nil {
			res.warn("Column name standardization skipped: %v", err)
		} else {
			res.record(name, "", "standardize_columns", model.CleaningOperation{CellsChanged: changed})
		}
	}

	// 2. Whitespace
	if c.opts.TrimWhitespace {
		trimmed := TrimWhitespace(res.Table)
		res.record(name, "", "trim_whitespace", model.CleaningOperation{CellsChanged: trimmed})
	}

	// 3. Types
	if c.opts.InferTypes {
		kinds := InferKinds(res.Table, c.opts.Numbers)
		for _, outcome := range Coerce(res.Table, kinds, c.opts.Numbers) {
			res.Outcomes = append(res.Outcomes, outcome)
			if !outcome.Changed() {
				continue
			}
			res.record(name, outcome.Column, "coerce", model.CleaningOperation{
				FromKind:     outcome.From,
				ToKind:       outcome.To,
				CellsChanged: outcome.Converted,
				CellsNulled:  outcome.BecameMissing,
			})
			if w := outcome.Warning(); w != "" {
				res.Warnings = append(res.Warnings, w)
			}
		}
	}

	// 4. Nulls
	if c.opts.NullPolicy != NullKeep {
		if c.opts.NullPolicy == NullFill && (c.opts.FillValue == nil || c.opts.FillValue.IsNull()) {
			res.warn("Null policy fill requested without a fill value; missing values kept")
		}
		out, affected, err := ApplyNullPolicy(res.Table, c.opts.NullPolicy, c.opts.FillValue)
		if err != nil {
			res.warn("Null policy skipped: %v", err)
		} else {
			res.Table = out
			op := model.CleaningOperation{CleaningNotes: string(c.opts.NullPolicy)}
			if c.opts.NullPolicy == NullDrop {
				op.RowsRemoved = affected
			} else {
				op.CellsChanged = affected
			}
			res.record(name, "", "null_policy", op)
		}
	}

	// 5. Explicit date columns
	var dated map[string]struct{}
	if len(c.opts.DateColumns) > 0 {
		dated = c.formatColumns(res, name, c.opts.DateColumns, c.opts.DateFormat, "format_date")
	}

	// 6. Datetime columns, explicit list first
	switch {
	case len(c.opts.DatetimeColumns) > 0:
		c.formatColumns(res, name, c.opts.DatetimeColumns, c.opts.DatetimeFormat, "format_datetime")
	case c.opts.AutoDetectDatetime:
		var detected []string
		for _, col := range DetectDatetimeColumns(res.Table, c.opts.DetectionSampleSize) {
			// formatted dates are final
			if _, done := dated[col]; !done {
				detected = append(detected, col)
			}
		}
		if len(detected) > 0 {
			log.Debug("Detected datetime columns", zap.Strings("columns", detected))
			c.formatColumns(res, name, detected, c.opts.DatetimeFormat, "format_datetime")
		}
	}

	// 7. Duplicates
	if c.opts.RemoveDuplicates {
		subset := c.resolveNames(res.Table, c.opts.DuplicateSubset)
		out, removed, err := RemoveDuplicates(res.Table, subset)
		if err != nil {
			res.warn("Duplicate removal skipped: %v", err)
		} else {
			res.Table = out
			res.record(name, "", "remove_duplicates", model.CleaningOperation{RowsRemoved: removed})
		}
	}

	log.Info("Cleaned table",
		zap.Int("rowsIn", res.RowsIn),
		zap.Int("rowsOut", res.Table.NumRows()),
		zap.Int("columns", res.Table.NumColumns()),
		zap.Int("warnings", len(res.Warnings)))

	return res, nil
}

// formatColumns renders each named column with the strftime format and
// returns the names it formatted. Unknown columns are reported and skipped.
func (c *DataCleaner) formatColumns(res *Result, table string, names []string, format, operation string) map[string]struct{} {
	formatted := make(map[string]struct{}, len(names))
	for _, requested := range names {
		col := c.lookup(res.Table, requested)
		if col == nil {
			res.warn("Column %s not found for %s", requested, operation)
			continue
		}
		from := col.Kind
		nulled := FormatTemporalColumn(col, format)
		res.record(table, col.Name, operation, model.CleaningOperation{
			FromKind:      from,
			ToKind:        model.KindText,
			CellsNulled:   nulled,
			CleaningNotes: format,
		})
		if nulled > 0 {
			res.warn("Column %s: %d value(s) could not be parsed as dates and became missing", col.Name, nulled)
		}
		formatted[col.Name] = struct{}{}
	}
	return formatted
}

// lookup finds a user-named column, also trying its canonical form when
// names were standardized
func (c *DataCleaner) lookup(t *model.Table, name string) *model.Column {
	if col := t.Column(name); col != nil {
		return col
	}
	if c.opts.StandardizeColumns {
		return t.Column(CanonicalName(name))
	}
	return nil
}

func (c *DataCleaner) resolveNames(t *model.Table, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if col := c.lookup(t, name); col != nil {
			out[i] = col.Name
		}
	}
	return out
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) record(table, column, operation string, op model.CleaningOperation) {
	op.TableName = table
	op.ColumnName = column
	op.Operation = operation
	r.Operations = append(r.Operations, op)
}
