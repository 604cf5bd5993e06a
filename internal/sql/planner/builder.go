package planner

import (
	"fmt"

	"github.com/tuannm99/novadoc/internal/catalog"
	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
	"github.com/tuannm99/novadoc/internal/sql/parser"
	"github.com/tuannm99/novadoc/internal/sql/predicate"
)

// Catalog is the read-only view of the table tree the planner validates against.
type Catalog interface {
	Lookup(path string) (*catalog.Table, bool)
}

// BuildPlan validates stmt against cat and returns the mutation to apply.
// It never modifies cat, so a statement that fails here has no effect.
func BuildPlan(stmt parser.Statement, cat Catalog) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.SetupTableStmt:
		return buildCreateTablePlan(s)
	case *parser.SchemaStmt:
		return buildDeclareSchemaPlan(s, cat)
	case *parser.SetKeyWhereStmt:
		return buildUpdateRowsPlan(s, cat)
	case *parser.SetKeyStmt:
		return buildAppendRowPlan(s, cat)
	default:
		return nil, fmt.Errorf("planner: unsupported statement type %T", stmt)
	}
}

func buildCreateTablePlan(s *parser.SetupTableStmt) (Plan, error) {
	if _, err := catalog.SplitPath(s.TableName); err != nil {
		return nil, err
	}
	return &CreateTablePlan{Path: s.TableName}, nil
}

func buildDeclareSchemaPlan(s *parser.SchemaStmt, cat Catalog) (Plan, error) {
	if _, err := catalog.SplitPath(s.TableName); err != nil {
		return nil, err
	}
	t, _ := cat.Lookup(s.TableName)
	noop, err := catalog.ValidateSchema(t, s.Columns)
	if err != nil {
		return nil, err
	}
	return &DeclareSchemaPlan{Path: s.TableName, Columns: s.Columns, Noop: noop}, nil
}

// schemedTable resolves the target of a SET KEY statement.
func schemedTable(path string, cat Catalog) (*catalog.Table, error) {
	t, ok := cat.Lookup(path)
	if !ok {
		return nil, dberr.New(dberr.CodeUnknownField, "unknown table %q", path)
	}
	if !t.Schemed {
		return nil, dberr.New(dberr.CodeSchemaNotDeclared, "table %q has no schema", path)
	}
	return t, nil
}

func column(t *catalog.Table, name string) (record.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return record.Column{}, dberr.New(dberr.CodeUnknownField,
			"unknown column %q in table %q", name, t.Path)
	}
	return col, nil
}

// decodeValue applies the literal decoding and NN rules for one target column.
func decodeValue(col record.Column, lit record.Literal) (record.Value, error) {
	v, err := record.DecodeLiteral(lit, col.Type)
	if err != nil {
		return record.Value{}, err
	}
	if v.IsNull() && col.NotNull() {
		return record.Value{}, dberr.New(dberr.CodeNullViolation, "column %q is NN", col.Name)
	}
	return v, nil
}

func buildAppendRowPlan(s *parser.SetKeyStmt, cat Catalog) (Plan, error) {
	t, err := schemedTable(s.TableName, cat)
	if err != nil {
		return nil, err
	}
	col, err := column(t, s.Column)
	if err != nil {
		return nil, err
	}

	p := &AppendRowPlan{Path: t.Path}

	// The explicit value of an AI column is ignored: the counter wins.
	if !col.AutoIncrement() {
		v, err := decodeValue(col, s.Value)
		if err != nil {
			return nil, err
		}
		p.Fields = append(p.Fields, Assignment{Column: col.Name, Value: v})
	}
	for _, ai := range t.AutoIncrementColumns() {
		p.Fields = append(p.Fields, Assignment{
			Column: ai.Name,
			Value:  record.FromInt64(ai.Type.Kind(), t.Counter(ai.Name)),
		})
	}
	return p, nil
}

func buildUpdateRowsPlan(s *parser.SetKeyWhereStmt, cat Catalog) (Plan, error) {
	t, err := schemedTable(s.TableName, cat)
	if err != nil {
		return nil, err
	}
	col, err := column(t, s.Column)
	if err != nil {
		return nil, err
	}
	filterCol, err := column(t, s.Where.Column)
	if err != nil {
		return nil, err
	}

	if col.AutoIncrement() {
		return nil, dberr.New(dberr.CodeTypeMismatch,
			"AI column %q only takes counter values", col.Name)
	}
	v, err := decodeValue(col, s.Value)
	if err != nil {
		return nil, err
	}
	pred, err := predicate.Compile(filterCol, s.Where.Op, s.Where.Value)
	if err != nil {
		return nil, err
	}

	p := &UpdateRowsPlan{Path: t.Path, Set: Assignment{Column: col.Name, Value: v}}
	for i, row := range t.Rows {
		stored, present := row.Get(filterCol.Name)
		if pred.Match(stored, present) {
			p.Rows = append(p.Rows, i)
		}
	}
	return p, nil
}
