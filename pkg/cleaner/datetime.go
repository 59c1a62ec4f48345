// pkg/cleaner/datetime.go
package cleaner

import (
	"regexp"

	"github.com/ncruces/go-strftime"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

const (
	// DefaultDatetimeFormat renders datetime columns
	DefaultDatetimeFormat = "%Y-%m-%d %H:%M:%S"
	// DefaultDateFormat renders date-only columns
	DefaultDateFormat = "%Y-%m-%d"
	// DefaultDetectionSample is how many present values detection looks at
	DefaultDetectionSample = 100
)

// datetimePatterns are matched against the start of each sampled value.
// A value may match more than one pattern and is counted once per match.
var datetimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2}:\d{2}`),
}

// DetectDatetimeColumns lists columns that hold datetimes, in table order.
// Datetime columns are always included. Text columns qualify when pattern
// matches over the first sampleSize present values exceed half the sample.
func DetectDatetimeColumns(t *model.Table, sampleSize int) []string {
	if sampleSize <= 0 {
		sampleSize = DefaultDetectionSample
	}

	var detected []string
	for _, col := range t.Columns() {
		switch col.Kind {
		case model.KindDatetime:
			detected = append(detected, col.Name)
		case model.KindText:
			if looksTemporal(col, sampleSize) {
				detected = append(detected, col.Name)
			}
		}
	}
	return detected
}

func looksTemporal(col *model.Column, sampleSize int) bool {
	sampled, matches := 0, 0
	for _, v := range col.Values {
		if sampled == sampleSize {
			break
		}
		if v.IsNull() {
			continue
		}
		sampled++
		s := cellText(v)
		for _, pattern := range datetimePatterns {
			if pattern.MatchString(s) {
				matches++
			}
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(matches) > float64(sampled)*0.5
}

// FormatTemporalColumn parses every cell as a datetime and renders it with
// the strftime format, in place. The column becomes text. Returns the
// number of present cells that could not be parsed and became missing.
func FormatTemporalColumn(col *model.Column, format string) int {
	nulled := 0
	for i, v := range col.Values {
		if v.IsNull() {
			continue
		}
		ts, ok := v.Time()
		if !ok {
			parsed, err := parseTime(cellText(v))
			if err != nil {
				col.Values[i] = model.Null()
				nulled++
				continue
			}
			ts = parsed
		}
		col.Values[i] = model.TextValue(strftime.Format(format, ts))
	}
	col.Kind = model.KindText
	return nulled
}
