// pkg/merge/join.go
package merge

import (
	"fmt"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// JoinKey returns the first column of left, in left's column order, that
// right also has. Returns "" when the tables share no column.
func JoinKey(left, right *model.Table) string {
	for _, name := range left.ColumnNames() {
		if right.HasColumn(name) {
			return name
		}
	}
	return ""
}

// Join merges two tables on one key column.
// Output columns are left's columns followed by right's non-key columns;
// a right column whose name is taken gets a _<rightName> suffix.
// Missing keys match each other. Outer joins list left-driven rows first,
// then unmatched right rows in right order.
func Join(left, right *model.Table, key string, joinType JoinType, rightName string) (*model.Table, error) {
	lkey, rkey := left.Column(key), right.Column(key)
	if lkey == nil || rkey == nil {
		return nil, fmt.Errorf("join key %q not present in both tables", key)
	}

	index := make(map[string][]int, right.NumRows())
	for i, v := range rkey.Values {
		k := matchKey(v)
		index[k] = append(index[k], i)
	}

	// Each pair holds a left and right row index; -1 means no row
	var pairs [][2]int
	matchedRight := make([]bool, right.NumRows())

	switch joinType {
	case JoinInner, JoinLeft, JoinOuter:
		for i, v := range lkey.Values {
			hits := index[matchKey(v)]
			for _, j := range hits {
				pairs = append(pairs, [2]int{i, j})
				matchedRight[j] = true
			}
			if len(hits) == 0 && joinType != JoinInner {
				pairs = append(pairs, [2]int{i, -1})
			}
		}
		if joinType == JoinOuter {
			for j, matched := range matchedRight {
				if !matched {
					pairs = append(pairs, [2]int{-1, j})
				}
			}
		}

	case JoinRight:
		leftIndex := make(map[string][]int, left.NumRows())
		for i, v := range lkey.Values {
			k := matchKey(v)
			leftIndex[k] = append(leftIndex[k], i)
		}
		for j, v := range rkey.Values {
			hits := leftIndex[matchKey(v)]
			for _, i := range hits {
				pairs = append(pairs, [2]int{i, j})
			}
			if len(hits) == 0 {
				pairs = append(pairs, [2]int{-1, j})
			}
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJoinType, joinType)
	}

	out := model.EmptyTable()
	taken := make(map[string]struct{})

	for _, col := range left.Columns() {
		values := make([]model.Value, len(pairs))
		for p, pair := range pairs {
			switch {
			case pair[0] >= 0:
				values[p] = col.Values[pair[0]]
			case col.Name == key:
				values[p] = rkey.Values[pair[1]]
			default:
				values[p] = model.Null()
			}
		}
		joined := model.NewColumn(col.Name, col.Kind, values)
		if col.Name == key && rkey.Kind != col.Kind {
			joined.WidenToText()
		}
		if err := out.AddColumn(joined); err != nil {
			return nil, err
		}
		taken[col.Name] = struct{}{}
	}

	for _, col := range right.Columns() {
		if col.Name == key {
			continue
		}
		values := make([]model.Value, len(pairs))
		for p, pair := range pairs {
			if pair[1] >= 0 {
				values[p] = col.Values[pair[1]]
			} else {
				values[p] = model.Null()
			}
		}
		name := suffixed(col.Name, rightName, taken)
		if err := out.AddColumn(model.NewColumn(name, col.Kind, values)); err != nil {
			return nil, err
		}
		taken[name] = struct{}{}
	}

	return out, nil
}

// SideBySide places right's columns after left's without aligning rows.
// The shorter table is padded with missing cells.
func SideBySide(left, right *model.Table) (*model.Table, error) {
	rows := left.NumRows()
	if right.NumRows() > rows {
		rows = right.NumRows()
	}

	out := model.EmptyTable()
	taken := make(map[string]struct{})
	for _, t := range []*model.Table{left, right} {
		for _, col := range t.Columns() {
			values := make([]model.Value, rows)
			copy(values, col.Values)
			name := col.Name
			if _, clash := taken[name]; clash {
				name = suffixed(name, "", taken)
			}
			if err := out.AddColumn(model.NewColumn(name, col.Kind, values)); err != nil {
				return nil, err
			}
			taken[name] = struct{}{}
		}
	}
	return out, nil
}

// matchKey compares keys by rendered value so text "1" joins numeric 1
func matchKey(v model.Value) string {
	if v.IsNull() {
		return "\x00"
	}
	return "v" + v.String()
}

func suffixed(name, source string, taken map[string]struct{}) string {
	if _, clash := taken[name]; !clash {
		return name
	}
	base := name
	if source != "" {
		base = name + "_" + source
	}
	candidate := base
	for n := 2; ; n++ {
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
}
