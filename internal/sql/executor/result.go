package executor

import (
	"github.com/tuannm99/novadoc/internal/record"
)

// Field is one (name, value) pair touched by a statement.
type Field struct {
	Name  string       `json:"name"`
	Value record.Value `json:"value"`
}

// Group is the set of fields of one row, in write order.
type Group []Field

// Result is what a statement changed (or, for SETUP TABLE, what it read).
// A filtered update yields one group per matched row, in row order.
type Result struct {
	Groups []Group `json:"groups"`

	AffectedRows int64 `json:"affected_rows"`
}

// Fields flattens all groups.
func (r *Result) Fields() []Field {
	var out []Field
	for _, g := range r.Groups {
		out = append(out, g...)
	}
	return out
}

// Get returns the first field named name.
func (r *Result) Get(name string) (record.Value, bool) {
	for _, g := range r.Groups {
		for _, f := range g {
			if f.Name == name {
				return f.Value, true
			}
		}
	}
	return record.Value{}, false
}

func (r *Result) addGroup(g Group) {
	r.Groups = append(r.Groups, g)
}

func groupOf(row *record.Row) Group {
	g := make(Group, 0, row.Len())
	row.Each(func(name string, v record.Value) {
		g = append(g, Field{Name: name, Value: v})
	})
	return g
}
