// Package predicate evaluates WHEREVER filters against stored row values.
package predicate

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
)

type Comparator uint8

const (
	Eq Comparator = iota + 1 // =
	Ne                       // <>
	Lt                       // <
	Gt                       // >
	Le                       // <=
	Ge                       // >=
)

func (c Comparator) String() string {
	switch c {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("Comparator(%d)", uint8(c))
	}
}

func ParseComparator(s string) (Comparator, bool) {
	switch s {
	case "=":
		return Eq, true
	case "<>":
		return Ne, true
	case "<":
		return Lt, true
	case ">":
		return Gt, true
	case "<=":
		return Le, true
	case ">=":
		return Ge, true
	default:
		return 0, false
	}
}

// IsOrdering reports whether c needs an ordered type (everything but = and <>).
func (c Comparator) IsOrdering() bool { return c != Eq && c != Ne }

// Predicate is a filter on one column, compiled once and matched against every row.
type Predicate struct {
	Column record.Column
	Op     Comparator

	want   record.Value
	isNull bool
}

// Compile checks that op is legal for col and decodes lit to the column's type.
// Nothing is read from any row, so a failure here leaves the table untouched.
func Compile(col record.Column, op Comparator, lit record.Literal) (*Predicate, error) {
	if op < Eq || op > Ge {
		return nil, dberr.New(dberr.CodeUnsupportedComparator, "unknown comparator %s", op)
	}

	switch col.Type {
	case record.ColTable:
		return nil, dberr.New(dberr.CodeUnsupportedComparator,
			"table column %q cannot be filtered", col.Name)
	case record.ColString, record.ColBoolean:
		if op.IsOrdering() {
			return nil, dberr.New(dberr.CodeUnsupportedComparator,
				"comparator %s is not supported for %s column %q", op, col.Type, col.Name)
		}
	}

	p := &Predicate{Column: col, Op: op}
	if lit.IsNull() {
		p.isNull = true
		return p, nil
	}

	want, err := record.DecodeLiteral(lit, col.Type)
	if err != nil {
		return nil, err
	}
	p.want = want
	return p, nil
}

// Match evaluates the predicate against one stored field. present is false when
// the row has no value for the column at all.
//
// Against NULL, "=" matches null or absent fields, "<>" matches fields holding a
// value and ordering comparators never match. A non-null operand never matches a
// null or absent field.
func (p *Predicate) Match(v record.Value, present bool) bool {
	missing := !present || v.IsNull()

	if p.isNull {
		switch p.Op {
		case Eq:
			return missing
		case Ne:
			return !missing
		default:
			return false
		}
	}
	if missing {
		return false
	}

	switch p.Column.Type {
	case record.ColString:
		eq := strings.EqualFold(v.Str(), p.want.Str())
		return eq == (p.Op == Eq)
	case record.ColBoolean:
		eq := v.Equal(p.want)
		return eq == (p.Op == Eq)
	default:
		return holds(compareNumeric(v, p.want), p.Op)
	}
}

func compareNumeric(a, b record.Value) int {
	if a.IsIntegral() && b.IsIntegral() {
		switch {
		case a.Int64() < b.Int64():
			return -1
		case a.Int64() > b.Int64():
			return 1
		default:
			return 0
		}
	}
	fa, fb := asFloat(a), asFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func asFloat(v record.Value) float64 {
	if v.IsIntegral() {
		return float64(v.Int64())
	}
	return v.Float64()
}

func holds(cmp int, op Comparator) bool {
	switch op {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Lt:
		return cmp < 0
	case Gt:
		return cmp > 0
	case Le:
		return cmp <= 0
	case Ge:
		return cmp >= 0
	default:
		return false
	}
}

// Evaluate compiles and matches in one step.
func Evaluate(col record.Column, stored record.Value, present bool, op Comparator, lit record.Literal) (bool, error) {
	p, err := Compile(col, op, lit)
	if err != nil {
		return false, err
	}
	return p.Match(stored, present), nil
}
