// pkg/merge/merge.go
package merge

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Mode selects how cleaned tables are combined
type Mode string

const (
	ModePerSheet    Mode = "per_sheet"
	ModeSingleSheet Mode = "single_sheet"
	ModeAppend      Mode = "append"
	ModeJoin        Mode = "join"
)

// JoinType governs row inclusion for key joins
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinOuter JoinType = "outer"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
)

// MergedTableName is the single output name for combined exports
const MergedTableName = "merged_data"

var (
	// ErrUnknownMergeMode is returned for a mode outside the known set
	ErrUnknownMergeMode = errors.New("unknown merge mode")
	// ErrUnknownJoinType is returned for a join type outside the known set
	ErrUnknownJoinType = errors.New("unknown join type")
)

// ParseMode validates a merge mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePerSheet, ModeSingleSheet, ModeAppend, ModeJoin:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMergeMode, s)
	}
}

// ParseJoinType validates a join type name
func ParseJoinType(s string) (JoinType, error) {
	switch j := JoinType(strings.ToLower(strings.TrimSpace(s))); j {
	case JoinInner, JoinOuter, JoinLeft, JoinRight:
		return j, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownJoinType, s)
	}
}

// Engine merges and prepares collections for export
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new merge engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Merge combines every table of the collection into one.
// Zero tables give an empty table; one table is returned as is, not copied.
func (e *Engine) Merge(c *model.Collection, mode Mode, joinType JoinType) (*model.Table, error) {
	if mode != ModeAppend && mode != ModeJoin {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMergeMode, mode)
	}
	if mode == ModeJoin {
		if _, err := ParseJoinType(string(joinType)); err != nil {
			return nil, err
		}
	}

	switch c.Len() {
	case 0:
		return model.EmptyTable(), nil
	case 1:
		t, _ := c.Get(c.Names()[0])
		return t, nil
	}

	if mode == ModeAppend {
		return Append(c)
	}
	return e.joinAll(c, joinType)
}

// PrepareExport shapes the collection for workbook export. per_sheet is the
// identity; single_sheet row-appends everything into merged_data, logging
// but not blocking on schema differences.
func (e *Engine) PrepareExport(c *model.Collection, mode Mode) (*model.Collection, error) {
	switch mode {
	case ModePerSheet:
		return c, nil

	case ModeSingleSheet:
		if ok, issues := CheckCompatibility(c); !ok {
			e.logger.Warn("Schema compatibility issues detected", zap.Strings("issues", issues))
		}
		merged, err := e.Merge(c, ModeAppend, "")
		if err != nil {
			return nil, fmt.Errorf("failed to merge tables: %w", err)
		}
		out := model.NewCollection()
		if err := out.Add(MergedTableName, merged); err != nil {
			return nil, err
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMergeMode, mode)
	}
}

// Append stacks all tables row-wise over the union of their columns.
// Columns appear in first-seen order and absent columns are padded with
// missing cells. A column whose kind differs between tables becomes text.
func Append(c *model.Collection) (*model.Table, error) {
	if c.Len() == 0 {
		return model.EmptyTable(), nil
	}

	var order []string
	kinds := make(map[string]model.Kind)
	total := 0
	err := c.Each(func(_ string, t *model.Table) error {
		total += t.NumRows()
		for _, col := range t.Columns() {
			k, seen := kinds[col.Name]
			switch {
			case !seen:
				order = append(order, col.Name)
				kinds[col.Name] = col.Kind
			case k != col.Kind:
				kinds[col.Name] = model.KindText
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := model.EmptyTable()
	for _, name := range order {
		values := make([]model.Value, 0, total)
		_ = c.Each(func(_ string, t *model.Table) error {
			if col := t.Column(name); col != nil {
				values = append(values, col.Values...)
				return nil
			}
			for i := 0; i < t.NumRows(); i++ {
				values = append(values, model.Null())
			}
			return nil
		})
		col := model.NewColumn(name, kinds[name], values)
		if col.Kind == model.KindText {
			col.WidenToText()
		}
		if err := out.AddColumn(col); err != nil {
			return nil, fmt.Errorf("failed to build appended table: %w", err)
		}
	}

	return out, nil
}

func (e *Engine) joinAll(c *model.Collection, joinType JoinType) (*model.Table, error) {
	names := c.Names()
	result, _ := c.Get(names[0])

	for _, name := range names[1:] {
		right, _ := c.Get(name)
		key := JoinKey(result, right)

		var err error
		if key == "" {
			e.logger.Warn("No common columns found, concatenating side by side",
				zap.String("table", name))
			result, err = SideBySide(result, right)
		} else {
			e.logger.Debug("Joining tables",
				zap.String("table", name),
				zap.String("key", key),
				zap.String("joinType", string(joinType)))
			result, err = Join(result, right, key, joinType, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", name, err)
		}
	}

	return result, nil
}
