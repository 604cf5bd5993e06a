package planner

import (
	"github.com/tuannm99/novadoc/internal/record"
)

// Plan is a fully validated mutation. Applying a plan cannot fail on any rule
// the statement language enforces.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

type CreateTablePlan struct {
	Path string
}

func (*CreateTablePlan) planNode() {}

type DeclareSchemaPlan struct {
	Path    string
	Columns []record.Column
	// Noop is set when the table already carries the same schema.
	Noop bool
}

func (*DeclareSchemaPlan) planNode() {}

// Assignment is one field written by a plan.
type Assignment struct {
	Column string
	Value  record.Value
}

type AppendRowPlan struct {
	Path string
	// Fields lists the explicit field first, then every AI field in schema order.
	Fields []Assignment
}

func (*AppendRowPlan) planNode() {}

type UpdateRowsPlan struct {
	Path string
	Set  Assignment
	// Rows are the indexes of the matching rows, ascending.
	Rows []int
}

func (*UpdateRowsPlan) planNode() {}
