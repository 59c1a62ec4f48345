// pkg/cleaner/operations.go
package cleaner

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// NumberFormat describes the locale of numeric text
type NumberFormat struct {
	Decimal   string // Decimal separator, "." when empty
	Thousands string // Thousands separator, none when empty
}

// DefaultNumberFormat parses plain "1234.5" style numbers
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{Decimal: "."}
}

// boolTokens is the closed token set accepted for boolean columns
var boolTokens = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "1": true,
	"false": false, "f": false, "no": false, "n": false, "0": false,
}

// timeLayouts are tried in order when parsing datetime text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-1-2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1-2-2006 15:04:05",
	"1-2-2006 15:04",
	"1-2-2006",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-01-02 15:04:05 -0700",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// decimalNumber is plain decimal notation with an optional exponent.
// Go literal forms (1_000, 0x1p4) and Inf/NaN words are not numbers here.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// cellText returns the text form of any present cell
func cellText(v model.Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	return v.String()
}

// parseNumber converts text to a float using the configured separators
func parseNumber(s string, nf NumberFormat) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, errors.New("empty string")
	}
	if nf.Thousands != "" {
		cleaned = strings.ReplaceAll(cleaned, nf.Thousands, "")
	}
	if nf.Decimal != "" && nf.Decimal != "." {
		cleaned = strings.ReplaceAll(cleaned, nf.Decimal, ".")
	}
	if !decimalNumber.MatchString(cleaned) {
		return 0, fmt.Errorf("cannot parse '%s' as number", s)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse '%s' as number: %w", s, err)
	}
	return f, nil
}

// parseBool maps a token from the closed boolean set, ignoring case
func parseBool(s string) (bool, error) {
	b, ok := boolTokens[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false, fmt.Errorf("cannot parse '%s' as boolean", s)
	}
	return b, nil
}

// isBoolToken reports whether s belongs to the boolean token set
func isBoolToken(s string) bool {
	_, err := parseBool(s)
	return err == nil
}

// parseTime tries every known layout
func parseTime(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, errors.New("empty string")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time from '%s'", cleaned)
}

// convertValue converts one cell to the target kind.
// ok is false when a present cell could not be converted and became missing.
func convertValue(v model.Value, target model.Kind, nf NumberFormat) (model.Value, bool) {
	if v.IsNull() {
		return v, true
	}
	if v.Kind() == target {
		return v, true
	}

	switch target {
	case model.KindText:
		return model.TextValue(cellText(v)), true

	case model.KindNumeric:
		if b, ok := v.Bool(); ok {
			if b {
				return model.NumberValue(1), true
			}
			return model.NumberValue(0), true
		}
		if v.Kind() == model.KindDatetime {
			return model.Null(), false
		}
		f, err := parseNumber(cellText(v), nf)
		if err != nil {
			return model.Null(), false
		}
		return model.NumberValue(f), true

	case model.KindBoolean:
		b, err := parseBool(cellText(v))
		if err != nil {
			return model.Null(), false
		}
		return model.BoolValue(b), true

	case model.KindDatetime:
		if v.Kind() != model.KindText {
			return model.Null(), false
		}
		t, err := parseTime(cellText(v))
		if err != nil {
			return model.Null(), false
		}
		return model.TimeValue(t), true

	default:
		return model.Null(), false
	}
}
