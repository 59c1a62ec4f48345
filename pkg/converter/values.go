// pkg/converter/values.go
package converter

import (
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// StorageKind is the kind a column is stored as. A column holding any
// present cell of another kind is stored as text so no cell is lost.
func (c *TypeConverter) StorageKind(col *model.Column) model.Kind {
	if col.Kind == model.KindText {
		return model.KindText
	}
	for _, v := range col.Values {
		if !v.IsNull() && v.Kind() != col.Kind {
			c.logger.Debug("Storing mixed column as text",
				zap.String("column", col.Name),
				zap.String("kind", col.Kind.String()),
				zap.String("cellKind", v.Kind().String()))
			return model.KindText
		}
	}
	return col.Kind
}

// StorageKinds returns StorageKind for every column in order
func (c *TypeConverter) StorageKinds(t *model.Table) []model.Kind {
	kinds := make([]model.Kind, t.NumColumns())
	for j, col := range t.Columns() {
		kinds[j] = c.StorageKind(col)
	}
	return kinds
}

// ConvertValue converts a cell to a database/sql argument for a column
// stored as kind. Missing cells become nil; text columns receive the
// text form of every cell; datetimes go out as time.Time.
func (c *TypeConverter) ConvertValue(v model.Value, kind model.Kind) interface{} {
	if v.IsNull() {
		return nil
	}
	if kind == model.KindText || v.Kind() != kind {
		s := v.String()
		if s == "" && c.config.EmptyStringAsNull {
			return nil
		}
		return s
	}
	return v.Interface()
}

// RowArgs converts row i of the table into driver arguments in column
// order, using kinds from StorageKinds
func (c *TypeConverter) RowArgs(t *model.Table, i int, kinds []model.Kind) []interface{} {
	cols := t.Columns()
	args := make([]interface{}, len(cols))
	for j, col := range cols {
		args[j] = c.ConvertValue(col.Values[i], kinds[j])
	}
	return args
}
