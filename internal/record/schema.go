package record

import (
	"fmt"
	"strings"
)

type ColumnType uint8

const (
	ColString ColumnType = iota + 1
	ColBoolean
	ColByte
	ColShort
	ColInteger
	ColLong
	ColFloat
	ColDouble
	ColTable // nested table, never holds a row value
)

var columnTypeNames = [...]string{
	ColString:  "string",
	ColBoolean: "boolean",
	ColByte:    "byte",
	ColShort:   "short",
	ColInteger: "integer",
	ColLong:    "long",
	ColFloat:   "float",
	ColDouble:  "double",
	ColTable:   "table",
}

func (t ColumnType) String() string {
	if int(t) < len(columnTypeNames) && columnTypeNames[t] != "" {
		return columnTypeNames[t]
	}
	return fmt.Sprintf("ColumnType(%d)", uint8(t))
}

// IsNumeric reports whether t is one of byte, short, integer, long, float, double.
func (t ColumnType) IsNumeric() bool {
	switch t {
	case ColByte, ColShort, ColInteger, ColLong, ColFloat, ColDouble:
		return true
	default:
		return false
	}
}

// IsIntegral reports whether t is one of byte, short, integer, long.
func (t ColumnType) IsIntegral() bool {
	switch t {
	case ColByte, ColShort, ColInteger, ColLong:
		return true
	default:
		return false
	}
}

// ParseColumnType maps a declared type name (case-insensitive) to a ColumnType.
// "int" is a synonym of "integer".
func ParseColumnType(s string) (ColumnType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return ColString, true
	case "boolean":
		return ColBoolean, true
	case "byte":
		return ColByte, true
	case "short":
		return ColShort, true
	case "integer", "int":
		return ColInteger, true
	case "long":
		return ColLong, true
	case "float":
		return ColFloat, true
	case "double":
		return ColDouble, true
	case "table":
		return ColTable, true
	default:
		return 0, false
	}
}

// Kind returns the Value kind stored by columns of type t. Table columns have no kind.
func (t ColumnType) Kind() Kind {
	switch t {
	case ColString:
		return KindString
	case ColBoolean:
		return KindBoolean
	case ColByte:
		return KindByte
	case ColShort:
		return KindShort
	case ColInteger:
		return KindInteger
	case ColLong:
		return KindLong
	case ColFloat:
		return KindFloat
	case ColDouble:
		return KindDouble
	default:
		return KindNull
	}
}

type Modifier uint8

const (
	NotNull       Modifier = 1 << iota // NN
	AutoIncrement                      // AI
)

// Modifiers is a set of Modifier flags.
type Modifiers uint8

func (m Modifiers) Has(f Modifier) bool { return uint8(m)&uint8(f) != 0 }

func (m Modifiers) With(f Modifier) Modifiers { return Modifiers(uint8(m) | uint8(f)) }

// Names returns the modifier keywords in canonical order.
func (m Modifiers) Names() []string {
	var out []string
	if m.Has(NotNull) {
		out = append(out, "NN")
	}
	if m.Has(AutoIncrement) {
		out = append(out, "AI")
	}
	return out
}

func ParseModifier(s string) (Modifier, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NN":
		return NotNull, true
	case "AI":
		return AutoIncrement, true
	default:
		return 0, false
	}
}

type Column struct {
	Name      string
	Type      ColumnType
	Modifiers Modifiers
}

func (c Column) NotNull() bool       { return c.Modifiers.Has(NotNull) }
func (c Column) AutoIncrement() bool { return c.Modifiers.Has(AutoIncrement) }

// Metadata keys stored next to the columns of a table schema. They can never be
// used as column names.
const (
	KeySchemed    = "schemed"
	KeyModifiers  = "modifiers"
	KeyAttributes = "attributes"
)

func IsReservedName(name string) bool {
	switch strings.ToLower(name) {
	case KeySchemed, KeyModifiers, KeyAttributes:
		return true
	default:
		return false
	}
}

// Schema is the ordered column list of a table.
type Schema struct {
	Cols []Column
}

func (s Schema) NumCols() int { return len(s.Cols) }

// Lookup finds a column by exact name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SameShape reports whether both schemas declare the same column name/type set,
// ignoring order and modifiers.
func (s Schema) SameShape(o Schema) bool {
	if len(s.Cols) != len(o.Cols) {
		return false
	}
	types := make(map[string]ColumnType, len(s.Cols))
	for _, c := range s.Cols {
		types[c.Name] = c.Type
	}
	for _, c := range o.Cols {
		t, ok := types[c.Name]
		if !ok || t != c.Type {
			return false
		}
	}
	return true
}
