package record

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novadoc/internal/dberr"
)

type LiteralKind uint8

const (
	LitQuoted LiteralKind = iota + 1 // '...'
	LitNumber                        // [+-]digits with optional ',' or '.' fraction
	LitWord                          // bare word: true, false, NULL, ...
)

// Literal is a raw, undecoded value token from a statement. It is only turned
// into a Value once the target column type is known.
type Literal struct {
	Kind LiteralKind
	Text string
}

func Quoted(s string) Literal { return Literal{Kind: LitQuoted, Text: s} }
func Number(s string) Literal { return Literal{Kind: LitNumber, Text: s} }
func Word(s string) Literal   { return Literal{Kind: LitWord, Text: s} }

func (l Literal) IsNull() bool {
	return l.Kind == LitWord && strings.EqualFold(l.Text, "NULL")
}

func (l Literal) isBoolWord() bool {
	return l.Kind == LitWord && (strings.EqualFold(l.Text, "true") || strings.EqualFold(l.Text, "false"))
}

func (l Literal) String() string {
	if l.Kind == LitQuoted {
		return "'" + l.Text + "'"
	}
	return l.Text
}

var (
	minByte  = decimal.NewFromInt(math.MinInt8)
	maxByte  = decimal.NewFromInt(math.MaxInt8)
	minShort = decimal.NewFromInt(math.MinInt16)
	maxShort = decimal.NewFromInt(math.MaxInt16)
	minInt   = decimal.NewFromInt(math.MinInt32)
	maxInt   = decimal.NewFromInt(math.MaxInt32)
	minLong  = decimal.NewFromInt(math.MinInt64)
	maxLong  = decimal.NewFromInt(math.MaxInt64)
)

// DecodeLiteral converts lit into a Value for a column of type t.
// Numbers saturate at the bounds of t instead of failing.
func DecodeLiteral(lit Literal, t ColumnType) (Value, error) {
	if t == ColTable {
		return Value{}, dberr.New(dberr.CodeTypeMismatch, "table column cannot hold a value")
	}
	if lit.IsNull() {
		return Null(), nil
	}

	switch t {
	case ColString:
		switch {
		case lit.Kind == LitQuoted:
			return String(lit.Text), nil
		case lit.Kind == LitNumber || lit.isBoolWord():
			return Value{}, mismatch(lit, t)
		}
	case ColBoolean:
		switch {
		case lit.isBoolWord():
			return Bool(strings.EqualFold(lit.Text, "true")), nil
		case lit.Kind == LitNumber && lit.Text == "1":
			return Bool(true), nil
		case lit.Kind == LitNumber && lit.Text == "0":
			return Bool(false), nil
		case lit.Kind == LitQuoted || lit.Kind == LitNumber:
			return Value{}, mismatch(lit, t)
		}
	case ColByte, ColShort, ColInteger, ColLong, ColFloat, ColDouble:
		switch {
		case lit.Kind == LitNumber:
			return decodeNumber(lit, t)
		case lit.Kind == LitQuoted || lit.isBoolWord():
			return Value{}, mismatch(lit, t)
		}
	}
	return Value{}, dberr.New(dberr.CodeMalformedLiteral, "malformed literal %s", lit)
}

func mismatch(lit Literal, t ColumnType) error {
	return dberr.New(dberr.CodeTypeMismatch, "literal %s does not fit column type %s", lit, t)
}

func decodeNumber(lit Literal, t ColumnType) (Value, error) {
	d, err := decimal.NewFromString(strings.Replace(lit.Text, ",", ".", 1))
	if err != nil {
		return Value{}, dberr.New(dberr.CodeMalformedLiteral, "malformed number %s", lit)
	}

	switch t {
	case ColByte:
		return Byte(int8(clampDecimal(d, minByte, maxByte))), nil
	case ColShort:
		return Short(int16(clampDecimal(d, minShort, maxShort))), nil
	case ColInteger:
		return Integer(int32(clampDecimal(d, minInt, maxInt))), nil
	case ColLong:
		return Long(clampDecimal(d, minLong, maxLong)), nil
	case ColFloat:
		f, _ := d.Float64()
		return Float(float32(clampFloat(f, math.MaxFloat32))), nil
	case ColDouble:
		f, _ := d.Float64()
		return Double(clampFloat(f, math.MaxFloat64)), nil
	default:
		return Value{}, mismatch(lit, t)
	}
}

// clampDecimal rounds d half away from zero and saturates it to [lo, hi].
func clampDecimal(d, lo, hi decimal.Decimal) int64 {
	d = d.Round(0)
	if d.LessThan(lo) {
		return lo.IntPart()
	}
	if d.GreaterThan(hi) {
		return hi.IntPart()
	}
	return d.IntPart()
}

func clampFloat(f, limit float64) float64 {
	if f > limit {
		return limit
	}
	if f < -limit {
		return -limit
	}
	return f
}
