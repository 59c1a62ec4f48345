// pkg/merge/schema.go
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// CheckCompatibility compares every table's column set against the first
// table's. Issues are reported per table and per direction, in input order.
func CheckCompatibility(c *model.Collection) (bool, []string) {
	if c.Len() < 2 {
		return true, nil
	}

	names := c.Names()
	reference, _ := c.Get(names[0])
	refCols := columnSet(reference)

	var issues []string
	for _, name := range names {
		table, _ := c.Get(name)
		cols := columnSet(table)

		if missing := difference(refCols, cols); len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("%s is missing columns: %s", name, formatSet(missing)))
		}
		if extra := difference(cols, refCols); len(extra) > 0 {
			issues = append(issues, fmt.Sprintf("%s has extra columns: %s", name, formatSet(extra)))
		}
	}

	return len(issues) == 0, issues
}

// ValidateMergeOperation reports whether merging is safe for the mode.
// The run is valid only when there are no warnings at all, so schema
// differences alone make single_sheet and join merges invalid.
func ValidateMergeOperation(c *model.Collection, mode Mode) (bool, []string) {
	var warnings []string

	if c.Len() == 0 {
		return false, append(warnings, "No data to merge")
	}
	if c.Len() == 1 {
		return true, warnings
	}

	if mode == ModeSingleSheet || mode == ModeJoin {
		if ok, issues := CheckCompatibility(c); !ok {
			warnings = append(warnings, issues...)
		}
	}
	if mode == ModeJoin {
		warnings = append(warnings, "Join operations may result in data multiplication")
	}

	return len(warnings) == 0, warnings
}

func columnSet(t *model.Table) map[string]struct{} {
	set := make(map[string]struct{}, t.NumColumns())
	for _, name := range t.ColumnNames() {
		set[name] = struct{}{}
	}
	return set
}

// difference returns the sorted members of a that are not in b
func difference(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func formatSet(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
