package parser

import (
	"github.com/tuannm99/novadoc/internal/record"
	"github.com/tuannm99/novadoc/internal/sql/predicate"
)

// Statement is the root interface for all statements.
type Statement interface {
	stmtNode()
}

// ----- SETUP TABLE -----
type SetupTableStmt struct {
	TableName string
}

func (*SetupTableStmt) stmtNode() {}

// ----- IN TABLE ... SCHEMA IS -----
type SchemaStmt struct {
	TableName string
	Columns   []record.Column
}

func (*SchemaStmt) stmtNode() {}

// ----- IN TABLE ... SET KEY -----
type SetKeyStmt struct {
	TableName string
	Column    string
	Value     record.Literal
}

func (*SetKeyStmt) stmtNode() {}

// ----- IN TABLE ... SET KEY ... WHEREVER -----
type SetKeyWhereStmt struct {
	SetKeyStmt
	Where Condition
}

func (*SetKeyWhereStmt) stmtNode() {}

// Condition is the WHEREVER clause: '<col>' <op> <literal>.
type Condition struct {
	Column string
	Op     predicate.Comparator
	Value  record.Literal
}
