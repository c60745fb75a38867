package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a Value holds.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindTime
	KindText
)

// String returns the kind name used in logs and JSON payloads.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// LabelTimeLayout is how time values are rendered as chart labels.
const LabelTimeLayout = "2006-01-02 15:04:05"

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
	t    time.Time
}

// Number returns a numeric cell. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Time returns a timestamp cell.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

// Missing returns an absent cell.
func Missing() Value {
	return Value{}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload, false for any other kind.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// TimeValue returns the timestamp payload, false for any other kind.
func (v Value) TimeValue() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// String renders the value as a label. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindTime:
		return v.t.Format(LabelTimeLayout)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// FormatNumber renders a float in its shortest decimal form ("3", "2.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether two values are the same cell content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.t.Equal(o.t)
	case KindText:
		return v.str == o.str
	default:
		return true
	}
}

// Key returns a comparable identity used for grouping and de-duplication.
type Key struct {
	kind Kind
	num  float64
	str  string
	ns   int64
}

// Key returns the grouping identity of v.
func (v Value) Key() Key {
	switch v.kind {
	case KindNumber:
		n := v.num
		if n == 0 {
			n = 0 // fold -0 into 0
		}
		return Key{kind: KindNumber, num: n}
	case KindTime:
		return Key{kind: KindTime, ns: v.t.UnixNano()}
	case KindText:
		return Key{kind: KindText, str: v.str}
	default:
		return Key{}
	}
}

// Compare orders values natively: numbers numerically, times chronologically,
// text lexicographically. Mixed kinds order Number < Time < Text; missing sorts first.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case KindTime:
		return a.t.Compare(b.t)
	case KindText:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

// MarshalJSON encodes numbers as JSON numbers and times as RFC 3339 strings
// in their own offset. Text is a string and a missing cell is null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	case KindText:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON, except that timestamps come
// back as text. FromSnapshot re-types them using the column schema.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a decoded Go value into a cell.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Missing()
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	case string:
		return Text(x)
	case bool:
		if x {
			return Text("True")
		}
		return Text("False")
	case time.Time:
		return Time(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Missing()
		}
		return Text(string(b))
	}
}
