// pkg/cleaner/names.go
package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s\p{Z}]`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)
	underscorePattern = regexp.MustCompile(`_+`)
)

// CanonicalName converts a raw header to lowercase snake case.
// The result may be empty when the header has no letters or digits.
func CanonicalName(raw string) string {
	name := nonWordPattern.ReplaceAllString(raw, "_")
	name = strings.ToLower(name)
	name = whitespacePattern.ReplaceAllString(name, "_")
	name = underscorePattern.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// CanonicalNames canonicalizes a full header row.
// Empty results become column_<position> (1-based) and collisions get
// a _2, _3 ... suffix, so the output is always unique.
func CanonicalNames(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]struct{}, len(raw))

	for i, header := range raw {
		name := CanonicalName(header)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = uniqueName(name, taken)
		taken[out[i]] = struct{}{}
	}
	return out
}

// StandardizeColumnNames renames every column of the table in place and
// returns the number of names that changed
func StandardizeColumnNames(t *model.Table) (int, error) {
	before := t.ColumnNames()
	after := CanonicalNames(before)
	if err := t.RenameColumns(after); err != nil {
		return 0, fmt.Errorf("failed to rename columns: %w", err)
	}

	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
		}
	}
	return changed, nil
}

func uniqueName(name string, taken map[string]struct{}) string {
	if _, clash := taken[name]; !clash {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
	}
}
