// pkg/cleaner/rows.go
package cleaner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// NullPolicy decides what happens to missing cells
type NullPolicy string

const (
	NullKeep NullPolicy = "keep"
	NullDrop NullPolicy = "drop"
	NullFill NullPolicy = "fill"
)

// ErrUnknownNullPolicy is returned for a policy outside keep/drop/fill
var ErrUnknownNullPolicy = errors.New("unknown null policy")

// ParseNullPolicy validates a policy name
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch p := NullPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case NullKeep, NullDrop, NullFill:
		return p, nil
	case "":
		return NullKeep, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNullPolicy, s)
	}
}

// TrimWhitespace strips leading and trailing whitespace from every text
// cell of every text column, in place. Returns the number of cells changed.
func TrimWhitespace(t *model.Table) int {
	changed := 0
	for _, col := range t.Columns() {
		if col.Kind != model.KindText {
			continue
		}
		for i, v := range col.Values {
			s, ok := v.Text()
			if !ok {
				continue
			}
			trimmed := strings.TrimSpace(s)
			if trimmed != s {
				col.Values[i] = model.TextValue(trimmed)
				changed++
			}
		}
	}
	return changed
}

// ApplyNullPolicy returns the table after applying the policy, plus the
// number of rows dropped or cells filled. Fill without a value is a no-op.
// The fill value keeps its own kind regardless of the column kind.
func ApplyNullPolicy(t *model.Table, policy NullPolicy, fill *model.Value) (*model.Table, int, error) {
	switch policy {
	case NullKeep:
		return t, 0, nil

	case NullDrop:
		keep := make([]int, 0, t.NumRows())
		for i := 0; i < t.NumRows(); i++ {
			if !rowHasNull(t, i) {
				keep = append(keep, i)
			}
		}
		return t.SelectRows(keep), t.NumRows() - len(keep), nil

	case NullFill:
		if fill == nil || fill.IsNull() {
			return t, 0, nil
		}
		filled := 0
		for _, col := range t.Columns() {
			if col.NullCount() == 0 {
				continue
			}
			value := *fill
			if value.Kind() != col.Kind {
				// a fill of another kind turns the column into text
				col.WidenToText()
				value = model.TextValue(fill.String())
			}
			for i, v := range col.Values {
				if v.IsNull() {
					col.Values[i] = value
					filled++
				}
			}
		}
		return t, filled, nil

	default:
		return t, 0, fmt.Errorf("%w: %q", ErrUnknownNullPolicy, policy)
	}
}

// RemoveDuplicates keeps the first occurrence of every row, comparing only
// the subset columns when given. Row order is preserved.
func RemoveDuplicates(t *model.Table, subset []string) (*model.Table, int, error) {
	cols, err := subsetColumns(t, subset)
	if err != nil {
		return t, 0, err
	}
	if len(cols) == 0 {
		return t, 0, nil
	}

	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		key := rowKey(cols, i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	removed := t.NumRows() - len(keep)
	if removed == 0 {
		return t, 0, nil
	}
	return t.SelectRows(keep), removed, nil
}

// CountDuplicateRows counts rows that repeat an earlier row across all columns
func CountDuplicateRows(t *model.Table) int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for i := 0; i < t.NumRows(); i++ {
		key := rowKey(t.Columns(), i)
		if _, dup := seen[key]; dup {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func subsetColumns(t *model.Table, subset []string) ([]*model.Column, error) {
	if len(subset) == 0 {
		return t.Columns(), nil
	}
	cols := make([]*model.Column, 0, len(subset))
	for _, name := range subset {
		col := t.Column(name)
		if col == nil {
			return nil, fmt.Errorf("duplicate subset column %q not found", name)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func rowKey(cols []*model.Column, row int) string {
	var sb strings.Builder
	for _, col := range cols {
		k := col.Values[row].Key()
		sb.WriteString(strconv.Itoa(len(k)))
		sb.WriteByte(':')
		sb.WriteString(k)
	}
	return sb.String()
}

func rowHasNull(t *model.Table, row int) bool {
	for _, col := range t.Columns() {
		if col.Values[row].IsNull() {
			return true
		}
	}
	return false
}
