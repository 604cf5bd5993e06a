package catalog

import (
	"github.com/tuannm99/novadoc/internal/record"
)

// Table is one node of the table tree: a schema, its rows and nested tables.
type Table struct {
	Name string
	// Path is the dotted ancestry, e.g. "shop.orders". The tree root has an empty path.
	Path string

	Schema  record.Schema
	Schemed bool

	// Attributes holds the next auto-increment value per AI column.
	Attributes map[string]int64

	Rows []*record.Row

	children []*Table
	byName   map[string]*Table
}

func newTable(path, name string) *Table {
	return &Table{
		Name:       name,
		Path:       path,
		Attributes: make(map[string]int64),
		byName:     make(map[string]*Table),
	}
}

// Child returns the direct sub-table with the given name.
func (t *Table) Child(name string) (*Table, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Children returns direct sub-tables in creation order.
func (t *Table) Children() []*Table {
	out := make([]*Table, len(t.children))
	copy(out, t.children)
	return out
}

func (t *Table) addChild(name string) *Table {
	c := newTable(joinPath(t.Path, name), name)
	t.children = append(t.children, c)
	t.byName[name] = c
	return c
}

// Counter returns the value the next appended row will receive for an AI column.
func (t *Table) Counter(col string) int64 { return t.Attributes[col] }

// Column looks up a declared column.
func (t *Table) Column(name string) (record.Column, bool) {
	return t.Schema.Lookup(name)
}

// AutoIncrementColumns returns the AI columns in schema order.
func (t *Table) AutoIncrementColumns() []record.Column {
	var out []record.Column
	for _, c := range t.Schema.Cols {
		if c.AutoIncrement() {
			out = append(out, c)
		}
	}
	return out
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
