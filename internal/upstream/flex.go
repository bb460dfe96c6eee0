package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The upstream API is loosely typed: ids arrive as numbers or strings,
// amounts as numbers, decimal strings or null. The flex types below accept
// any of those and never fail the surrounding decode; a value they cannot
// read becomes the zero value.

var jsonNull = []byte("null")

// flexString reads a JSON string, number or bool as a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		*s = ""
		return nil
	}
	*s = flexString(data)
	return nil
}

func (s flexString) String() string { return string(s) }

// flexAmount reads a rupiah amount. Anything that is not a finite decimal
// becomes zero.
type flexAmount struct {
	decimal.Decimal
}

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	a.Decimal = parseAmount(data)
	return nil
}

func parseAmount(data []byte) decimal.Decimal {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return decimal.Zero
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return decimal.Zero
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// flexInt reads an integer from a JSON number or numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	d := parseAmount(data)
	*n = flexInt(d.IntPart())
	return nil
}

// flexBool reads true/false, 1/0 or their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var s flexString
	_ = s.UnmarshalJSON(data)
	v, err := strconv.ParseBool(strings.ToLower(s.String()))
	*b = flexBool(err == nil && v)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime reads a timestamp in any of timeLayouts. Unparseable values become
// the zero time.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s flexString
	_ = s.UnmarshalJSON(data)
	t.Time = parseTime(s.String())
	return nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v
		}
	}
	return time.Time{}
}

// firstTime returns the first non-zero time.
func firstTime(ts ...flexTime) time.Time {
	for _, t := range ts {
		if !t.IsZero() {
			return t.Time
		}
	}
	return time.Time{}
}
