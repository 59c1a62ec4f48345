// pkg/cleaner/coerce.go
package cleaner

import (
	"fmt"
	"sort"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// ColumnOutcome reports what coercion did to one column
type ColumnOutcome struct {
	Column        string     // Column name
	From          model.Kind // Kind before coercion
	To            model.Kind // Requested kind
	Converted     int        // Present cells now held in the target kind
	BecameMissing int        // Present cells that could not be converted
	Skipped       bool       // Column named in the map but absent from the table
}

// Changed reports whether the column kind actually changed
func (o ColumnOutcome) Changed() bool {
	return !o.Skipped && o.From != o.To
}

// Warning describes a lossy coercion, or returns "" when nothing was lost
func (o ColumnOutcome) Warning() string {
	if o.BecameMissing == 0 {
		return ""
	}
	return fmt.Sprintf("Column %s: %d value(s) could not be converted to %s and became missing",
		o.Column, o.BecameMissing, o.To)
}

// CoerceColumn converts every cell of the column to the target kind in place.
// Unconvertible cells become missing; the column never fails as a whole.
func CoerceColumn(col *model.Column, target model.Kind, nf NumberFormat) ColumnOutcome {
	outcome := ColumnOutcome{Column: col.Name, From: col.Kind, To: target}

	if col.Kind == target {
		outcome.Converted = col.Len() - col.NullCount()
		return outcome
	}

	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		converted, ok := convertValue(v, target, nf)
		if !ok {
			outcome.BecameMissing++
		} else {
			outcome.Converted++
		}
		col.Values[i] = converted
	}
	col.Kind = target

	return outcome
}

// Coerce applies a kind map to the table in place.
// Columns are visited in table order; names absent from the table are
// reported as skipped, in sorted order, after the real columns.
func Coerce(t *model.Table, kinds map[string]model.Kind, nf NumberFormat) []ColumnOutcome {
	outcomes := make([]ColumnOutcome, 0, len(kinds))

	for _, col := range t.Columns() {
		target, ok := kinds[col.Name]
		if !ok {
			continue
		}
		outcomes = append(outcomes, CoerceColumn(col, target, nf))
	}

	var missing []string
	for name := range kinds {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		outcomes = append(outcomes, ColumnOutcome{Column: name, To: kinds[name], Skipped: true})
	}

	return outcomes
}
