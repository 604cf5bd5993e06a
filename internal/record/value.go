package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBoolean
	KindByte
	KindShort
	KindInteger
	KindLong
	KindFloat
	KindDouble
)

var kindNames = [...]string{
	KindNull:    "null",
	KindString:  "string",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindShort:   "short",
	KindInteger: "integer",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is a single stored field value. Only the member matching kind is meaningful.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64   // byte, short, integer, long
	f    float64 // float, double
	s    string
	b    bool
}

func Null() Value                  { return Value{} }
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Bool(b bool) Value            { return Value{kind: KindBoolean, b: b} }
func Byte(v int8) Value            { return Value{kind: KindByte, i: int64(v)} }
func Short(v int16) Value          { return Value{kind: KindShort, i: int64(v)} }
func Integer(v int32) Value        { return Value{kind: KindInteger, i: int64(v)} }
func Long(v int64) Value           { return Value{kind: KindLong, i: v} }
func Float(v float32) Value        { return Value{kind: KindFloat, f: float64(v)} }
func Double(v float64) Value       { return Value{kind: KindDouble, f: v} }
func (v Value) Kind() Kind         { return v.kind }
func (v Value) IsNull() bool       { return v.kind == KindNull }
func (v Value) Str() string        { return v.s }
func (v Value) Boolean() bool      { return v.b }
func (v Value) Int64() int64       { return v.i }
func (v Value) Float64() float64   { return v.f }
func (v Value) IsIntegral() bool   { return v.kind >= KindByte && v.kind <= KindLong }
func (v Value) Equal(o Value) bool { return v == o }

// FromInt64 builds a value of the numeric kind k, saturating n to its width.
func FromInt64(k Kind, n int64) Value {
	switch k {
	case KindByte:
		return Byte(int8(clampInt(n, math.MinInt8, math.MaxInt8)))
	case KindShort:
		return Short(int16(clampInt(n, math.MinInt16, math.MaxInt16)))
	case KindInteger:
		return Integer(int32(clampInt(n, math.MinInt32, math.MaxInt32)))
	case KindLong:
		return Long(n)
	case KindFloat:
		return Float(float32(n))
	case KindDouble:
		return Double(float64(n))
	default:
		panic(fmt.Sprintf("record: FromInt64 on kind %s", k))
	}
}

func clampInt(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Any returns the Go value for v: nil, string, bool, int8, int16, int32, int64, float32 or float64.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBoolean:
		return v.b
	case KindByte:
		return int8(v.i)
	case KindShort:
		return int16(v.i)
	case KindInteger:
		return int32(v.i)
	case KindLong:
		return v.i
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindString:
		return v.s
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindByte, KindShort, KindInteger, KindLong:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "?"
	}
}

type jsonValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON encodes v as {"type": <kind>, "value": <value>} so the width survives the wire.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonValue{Type: v.kind.String(), Value: v.Any()})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	k, ok := parseKind(raw.Type)
	if !ok {
		return fmt.Errorf("record: unknown value type %q", raw.Type)
	}
	if k == KindNull {
		*v = Null()
		return nil
	}
	switch k {
	case KindString:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return err
		}
		*v = String(s)
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case KindByte, KindShort, KindInteger, KindLong:
		var n int64
		if err := json.Unmarshal(raw.Value, &n); err != nil {
			return err
		}
		*v = FromInt64(k, n)
	case KindFloat:
		var f float32
		if err := json.Unmarshal(raw.Value, &f); err != nil {
			return err
		}
		*v = Float(f)
	case KindDouble:
		var f float64
		if err := json.Unmarshal(raw.Value, &f); err != nil {
			return err
		}
		*v = Double(f)
	}
	return nil
}
