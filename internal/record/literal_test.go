package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novadoc/internal/dberr"
)

func TestDecodeLiteral_String(t *testing.T) {
	v, err := DecodeLiteral(Quoted("hello world"), ColString)
	require.NoError(t, err)
	assert.Equal(t, String("hello world"), v)

	_, err = DecodeLiteral(Number("12"), ColString)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)

	_, err = DecodeLiteral(Word("bogus"), ColString)
	require.ErrorIs(t, err, dberr.ErrMalformedLiteral)
}

func TestDecodeLiteral_Boolean(t *testing.T) {
	cases := []struct {
		lit  Literal
		want bool
	}{
		{Word("true"), true},
		{Word("TRUE"), true},
		{Word("False"), false},
		{Number("1"), true},
		{Number("0"), false},
	}
	for _, tc := range cases {
		v, err := DecodeLiteral(tc.lit, ColBoolean)
		require.NoError(t, err, tc.lit.String())
		assert.Equal(t, Bool(tc.want), v, tc.lit.String())
	}

	_, err := DecodeLiteral(Quoted("true"), ColBoolean)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)

	_, err = DecodeLiteral(Number("2"), ColBoolean)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)

	_, err = DecodeLiteral(Word("yes"), ColBoolean)
	require.ErrorIs(t, err, dberr.ErrMalformedLiteral)
}

func TestDecodeLiteral_NumericSaturates(t *testing.T) {
	cases := []struct {
		text string
		typ  ColumnType
		want Value
	}{
		{"500", ColByte, Byte(math.MaxInt8)},
		{"999999", ColByte, Byte(127)},
		{"-999999", ColByte, Byte(math.MinInt8)},
		{"70000", ColShort, Short(math.MaxInt16)},
		{"-70000", ColShort, Short(math.MinInt16)},
		{"3000000000", ColInteger, Integer(math.MaxInt32)},
		{"99999999999999999999999", ColLong, Long(math.MaxInt64)},
		{"-99999999999999999999999", ColLong, Long(math.MinInt64)},
		{"42", ColInteger, Integer(42)},
		{"+42", ColInteger, Integer(42)},
		{"1e400", ColDouble, Double(math.MaxFloat64)},
	}
	for _, tc := range cases {
		v, err := DecodeLiteral(Number(tc.text), tc.typ)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, v, "%s as %s", tc.text, tc.typ)
	}
}

func TestDecodeLiteral_DecimalSeparators(t *testing.T) {
	v, err := DecodeLiteral(Number("1,5"), ColDouble)
	require.NoError(t, err)
	assert.Equal(t, Double(1.5), v)

	v, err = DecodeLiteral(Number("2.25"), ColFloat)
	require.NoError(t, err)
	assert.Equal(t, Float(2.25), v)

	// integral widths round half away from zero
	v, err = DecodeLiteral(Number("2.5"), ColInteger)
	require.NoError(t, err)
	assert.Equal(t, Integer(3), v)

	v, err = DecodeLiteral(Number("-2,5"), ColShort)
	require.NoError(t, err)
	assert.Equal(t, Short(-3), v)
}

func TestDecodeLiteral_NumericRejectsOtherShapes(t *testing.T) {
	_, err := DecodeLiteral(Quoted("12"), ColInteger)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)

	_, err = DecodeLiteral(Word("true"), ColLong)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)

	_, err = DecodeLiteral(Number("1.2.3"), ColDouble)
	require.ErrorIs(t, err, dberr.ErrMalformedLiteral)
}

func TestDecodeLiteral_Null(t *testing.T) {
	for _, typ := range []ColumnType{ColString, ColBoolean, ColByte, ColDouble} {
		v, err := DecodeLiteral(Word("null"), typ)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
	}

	_, err := DecodeLiteral(Word("NULL"), ColTable)
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)
}
