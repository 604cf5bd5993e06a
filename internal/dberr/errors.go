package dberr

import (
	"errors"
	"fmt"
)

// Code classifies a statement failure.
type Code uint8

const (
	CodeUnknownStatement Code = iota + 1
	CodeMalformedLiteral
	CodeTypeMismatch
	CodeEmptySchema
	CodeSchemaConflict
	CodeReservedName
	CodeSchemaNotDeclared
	CodeUnknownField
	CodeNullViolation
	CodeUnsupportedComparator
)

var codeNames = map[Code]string{
	CodeUnknownStatement:      "UNKNOWN_STATEMENT",
	CodeMalformedLiteral:      "MALFORMED_LITERAL",
	CodeTypeMismatch:          "TYPE_MISMATCH",
	CodeEmptySchema:           "EMPTY_SCHEMA",
	CodeSchemaConflict:        "SCHEMA_CONFLICT",
	CodeReservedName:          "RESERVED_NAME",
	CodeSchemaNotDeclared:     "SCHEMA_NOT_DECLARED",
	CodeUnknownField:          "UNKNOWN_FIELD",
	CodeNullViolation:         "NULL_VIOLATION",
	CodeUnsupportedComparator: "UNSUPPORTED_COMPARATOR",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", uint8(c))
}

// ParseCode is the inverse of Code.String. It returns 0 for unknown names.
func ParseCode(s string) Code {
	for c, name := range codeNames {
		if name == s {
			return c
		}
	}
	return 0
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrUnknownStatement      = &Error{Code: CodeUnknownStatement}
	ErrMalformedLiteral      = &Error{Code: CodeMalformedLiteral}
	ErrTypeMismatch          = &Error{Code: CodeTypeMismatch}
	ErrEmptySchema           = &Error{Code: CodeEmptySchema}
	ErrSchemaConflict        = &Error{Code: CodeSchemaConflict}
	ErrReservedName          = &Error{Code: CodeReservedName}
	ErrSchemaNotDeclared     = &Error{Code: CodeSchemaNotDeclared}
	ErrUnknownField          = &Error{Code: CodeUnknownField}
	ErrNullViolation         = &Error{Code: CodeNullViolation}
	ErrUnsupportedComparator = &Error{Code: CodeUnsupportedComparator}
)

// Error is a recoverable failure of a single statement. The document stays
// usable after any of them.
type Error struct {
	Code Code
	Msg  string

	// Input is the offending statement text, set for UnknownStatement.
	Input string

	Cause error
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Input != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Input)
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the Code carried by err, or 0 if err is not a statement error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
