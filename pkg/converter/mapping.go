// pkg/converter/mapping.go
package converter

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// varcharBuckets are the sizes a text column is rounded up to
var varcharBuckets = []int{50, 100, 255, 1000}

// textType picks a bounded VARCHAR for short text columns when storage
// optimisation is on, otherwise the dialect's unbounded text type
func (c *TypeConverter) textType(col *model.Column, unbounded string) string {
	if !c.config.OptimizeStorage {
		return unbounded
	}
	longest := maxTextLength(col)
	if longest == 0 || longest > c.config.MaxVarcharLength {
		return unbounded
	}
	size := longest
	for _, bucket := range varcharBuckets {
		if longest <= bucket {
			size = bucket
			break
		}
	}
	if size > c.config.MaxVarcharLength {
		size = c.config.MaxVarcharLength
	}
	c.logger.Debug("Sized text column",
		zap.String("column", col.Name),
		zap.Int("longest", longest),
		zap.Int("size", size))
	return fmt.Sprintf("VARCHAR(%d)", size)
}

// maxTextLength is the longest rendered value in runes
func maxTextLength(col *model.Column) int {
	longest := 0
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		if n := utf8.RuneCountInString(v.String()); n > longest {
			longest = n
		}
	}
	return longest
}
