// pkg/model/value.go
package model

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the logical type of a column or of a single cell value
type Kind int

const (
	// KindText is plain text, and also the raw state of every column read from a file
	KindText Kind = iota
	// KindNumeric is a floating-point number
	KindNumeric
	// KindBoolean is a true/false flag
	KindBoolean
	// KindDatetime is a point in time
	KindDatetime
)

// DatetimeLayout is the layout used to display datetime cells as text
const DatetimeLayout = "2006-01-02 15:04:05"

// String returns the dtype label used in reports and logs
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind  Kind
	valid bool
	str   string
	num   float64
	flag  bool
	ts    time.Time
}

// Null returns a missing value
func Null() Value {
	return Value{}
}

// TextValue wraps a string
func TextValue(s string) Value {
	return Value{kind: KindText, valid: true, str: s}
}

// NumberValue wraps a float
func NumberValue(f float64) Value {
	return Value{kind: KindNumeric, valid: true, num: f}
}

// BoolValue wraps a bool
func BoolValue(b bool) Value {
	return Value{kind: KindBoolean, valid: true, flag: b}
}

// TimeValue wraps a time
func TimeValue(t time.Time) Value {
	return Value{kind: KindDatetime, valid: true, ts: t}
}

// IsNull reports whether the cell is missing
func (v Value) IsNull() bool {
	return !v.valid
}

// Kind returns the kind of a present value. Missing values report KindText.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the string payload when the value is present text
func (v Value) Text() (string, bool) {
	if !v.valid || v.kind != KindText {
		return "", false
	}
	return v.str, true
}

// Number returns the numeric payload when the value is a present number
func (v Value) Number() (float64, bool) {
	if !v.valid || v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Bool returns the boolean payload when the value is a present boolean
func (v Value) Bool() (bool, bool) {
	if !v.valid || v.kind != KindBoolean {
		return false, false
	}
	return v.flag, true
}

// Time returns the time payload when the value is a present datetime
func (v Value) Time() (time.Time, bool) {
	if !v.valid || v.kind != KindDatetime {
		return time.Time{}, false
	}
	return v.ts, true
}

// String renders the value for display and export. Missing values render empty.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	case KindDatetime:
		return v.ts.Format(DatetimeLayout)
	default:
		return v.str
	}
}

// Key is an equality key that distinguishes kinds, so the text "1" and the
// number 1 never collide. All missing values share one key.
func (v Value) Key() string {
	if !v.valid {
		return "\x00"
	}
	switch v.kind {
	case KindDatetime:
		return "d\x01" + v.ts.UTC().Format(time.RFC3339Nano)
	default:
		return strconv.Itoa(int(v.kind)) + "\x01" + v.String()
	}
}

// Equal compares two values by kind and payload. Missing equals missing.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// Interface returns the payload as a plain Go value (nil when missing)
func (v Value) Interface() interface{} {
	if !v.valid {
		return nil
	}
	switch v.kind {
	case KindNumeric:
		return v.num
	case KindBoolean:
		return v.flag
	case KindDatetime:
		return v.ts
	default:
		return v.str
	}
}
