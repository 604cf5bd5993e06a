package catalog

import (
	"strings"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
)

// Tree is the hierarchical container of all tables of one document.
//
// Tree is not safe for concurrent use. A document has exactly one writer; callers
// sharing a Tree across goroutines must serialize access themselves.
type Tree struct {
	root *Table
}

func NewTree() *Tree {
	return &Tree{root: newTable("", "")}
}

// Root is the unnamed top-level table holding every top-level table as a child.
func (tr *Tree) Root() *Table { return tr.root }

// SplitPath splits a dotted table path and rejects empty segments.
func SplitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, dberr.New(dberr.CodeUnknownField, "empty table name")
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, dberr.New(dberr.CodeUnknownField, "invalid table path %q", path)
		}
	}
	return parts, nil
}

// Lookup finds an existing table by dotted path.
func (tr *Tree) Lookup(path string) (*Table, bool) {
	parts, err := SplitPath(path)
	if err != nil {
		return nil, false
	}
	t := tr.root
	for _, p := range parts {
		c, ok := t.Child(p)
		if !ok {
			return nil, false
		}
		t = c
	}
	return t, true
}

// GetOrCreate returns the table at path, creating it and any missing ancestors.
func (tr *Tree) GetOrCreate(path string) (*Table, error) {
	parts, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	t := tr.root
	for _, p := range parts {
		c, ok := t.Child(p)
		if !ok {
			c = t.addChild(p)
		}
		t = c
	}
	return t, nil
}

// ValidateSchema checks cols against t without changing anything. t may be nil
// for a table that does not exist yet. noop is true when t already carries the
// same schema, in which case declaring it again changes nothing.
func ValidateSchema(t *Table, cols []record.Column) (noop bool, err error) {
	if len(cols) == 0 {
		return false, dberr.New(dberr.CodeEmptySchema, "schema declares no columns")
	}

	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if record.IsReservedName(c.Name) {
			return false, dberr.New(dberr.CodeReservedName, "column name %q is reserved", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return false, dberr.New(dberr.CodeSchemaConflict, "column %q declared twice", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.AutoIncrement() && c.Type != record.ColInteger {
			return false, dberr.New(dberr.CodeTypeMismatch,
				"AI column %q must be integer, got %s", c.Name, c.Type)
		}
	}

	if t == nil || !t.Schemed {
		return false, nil
	}
	if t.Schema.SameShape(record.Schema{Cols: cols}) {
		return true, nil
	}
	return false, dberr.New(dberr.CodeSchemaConflict,
		"table %q already has a different schema", t.Path)
}

// DeclareSchema freezes the schema of t. Re-declaring an identical schema is a no-op.
func (tr *Tree) DeclareSchema(t *Table, cols []record.Column) error {
	noop, err := ValidateSchema(t, cols)
	if err != nil || noop {
		return err
	}

	schema := record.Schema{Cols: make([]record.Column, len(cols))}
	copy(schema.Cols, cols)
	t.Schema = schema
	t.Schemed = true

	for _, c := range cols {
		if c.AutoIncrement() {
			t.Attributes[c.Name] = 0
		}
		if c.Type == record.ColTable {
			if _, ok := t.Child(c.Name); !ok {
				t.addChild(c.Name)
			}
		}
	}
	return nil
}

// AppendRow adds row at the end of t and advances every AI counter. The caller
// is expected to have filled AI columns from Table.Counter.
func (tr *Tree) AppendRow(t *Table, row *record.Row) int {
	t.Rows = append(t.Rows, row)
	for _, c := range t.AutoIncrementColumns() {
		t.Attributes[c.Name]++
	}
	return len(t.Rows) - 1
}

// UpdateRow overwrites one field of an existing row.
func (tr *Tree) UpdateRow(t *Table, index int, column string, v record.Value) error {
	if index < 0 || index >= len(t.Rows) {
		return dberr.New(dberr.CodeUnknownField, "row %d out of range in table %q", index, t.Path)
	}
	t.Rows[index].Set(column, v)
	return nil
}

// Walk visits every table below the root depth-first, parents before children.
func (tr *Tree) Walk(fn func(t *Table) error) error {
	var visit func(t *Table) error
	visit = func(t *Table) error {
		for _, c := range t.children {
			if err := fn(c); err != nil {
				return err
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(tr.root)
}
