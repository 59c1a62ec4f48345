// pkg/cleaner/infer.go
package cleaner

import (
	"strings"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// InferKind proposes a kind for one column.
// Non-text columns keep their kind; text columns are tried as numeric,
// then datetime, then boolean, falling back to text.
func InferKind(col *model.Column, nf NumberFormat) model.Kind {
	if col.Kind != model.KindText {
		return col.Kind
	}

	present := make([]string, 0, len(col.Values))
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		present = append(present, cellText(v))
	}
	if len(present) == 0 {
		return model.KindText
	}

	if allParse(present, func(s string) bool {
		_, err := parseNumber(s, nf)
		return err == nil
	}) {
		return model.KindNumeric
	}

	if allParse(present, func(s string) bool {
		_, err := parseTime(s)
		return err == nil
	}) {
		return model.KindDatetime
	}

	if looksBoolean(present) {
		return model.KindBoolean
	}

	return model.KindText
}

// InferKinds runs InferKind over every column of the table
func InferKinds(t *model.Table, nf NumberFormat) map[string]model.Kind {
	kinds := make(map[string]model.Kind, t.NumColumns())
	for _, col := range t.Columns() {
		kinds[col.Name] = InferKind(col, nf)
	}
	return kinds
}

func allParse(values []string, ok func(string) bool) bool {
	for _, s := range values {
		if !ok(s) {
			return false
		}
	}
	return true
}

// looksBoolean requires at most two distinct tokens, all from the boolean set
func looksBoolean(values []string) bool {
	distinct := make(map[string]struct{}, 2)
	for _, s := range values {
		token := strings.ToLower(s)
		if !isBoolToken(token) {
			return false
		}
		distinct[token] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	return true
}
