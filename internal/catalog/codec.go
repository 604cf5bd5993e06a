package catalog

import (
	"fmt"
	"math"

	"github.com/tuannm99/novadoc/internal/doctree"
	"github.com/tuannm99/novadoc/internal/record"
)

// Keys of a table object inside the document.
const (
	keySchema = "schema"
	keyRows   = "rows"
	keyTables = "tables"
)

// Encode renders the whole tree as a document:
//
//	{"<table>": {"schema": {"schemed": true, "modifiers": {...}, "attributes": {...}, "<col>": "<type>"},
//	             "rows": [{...}], "tables": {"<child>": {...}}}}
func Encode(tr *Tree) (*doctree.Object, error) {
	root := doctree.NewObject("", "")
	for _, t := range tr.root.children {
		if err := encodeTable(root.PutObject(t.Name), t); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func encodeTable(obj *doctree.Object, t *Table) error {
	schema := obj.PutObject(keySchema)
	if _, err := schema.Put(record.KeySchemed, t.Schemed); err != nil {
		return err
	}

	mods := schema.PutObject(record.KeyModifiers)
	attrs := schema.PutObject(record.KeyAttributes)
	for _, c := range t.Schema.Cols {
		if names := c.Modifiers.Names(); len(names) > 0 {
			arr := mods.PutArray(c.Name)
			for _, n := range names {
				if _, err := arr.Append(n); err != nil {
					return err
				}
			}
		}
		if c.AutoIncrement() {
			if _, err := attrs.Put(c.Name, t.Attributes[c.Name]); err != nil {
				return err
			}
		}
	}
	for _, c := range t.Schema.Cols {
		if _, err := schema.Put(c.Name, c.Type.String()); err != nil {
			return err
		}
	}

	rows := obj.PutArray(keyRows)
	for _, r := range t.Rows {
		ro := rows.AppendObject()
		var err error
		r.Each(func(name string, v record.Value) {
			if err == nil {
				_, err = ro.Put(name, v.Any())
			}
		})
		if err != nil {
			return err
		}
	}

	if len(t.children) > 0 {
		children := obj.PutObject(keyTables)
		for _, c := range t.children {
			if err := encodeTable(children.PutObject(c.Name), c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode rebuilds a tree from a document produced by Encode.
func Decode(root *doctree.Object) (*Tree, error) {
	tr := NewTree()
	if err := decodeChildren(root, tr.root); err != nil {
		return nil, err
	}
	return tr, nil
}

func decodeChildren(obj *doctree.Object, parent *Table) error {
	for _, name := range obj.Keys() {
		child, ok := obj.ChildObject(name)
		if !ok {
			return fmt.Errorf("catalog: %s: table must be an object", joinPath(parent.Path, name))
		}
		t, ok := parent.Child(name)
		if !ok {
			t = parent.addChild(name)
		}
		if err := decodeTable(child, t); err != nil {
			return err
		}
	}
	return nil
}

func decodeTable(obj *doctree.Object, t *Table) error {
	if schema, ok := obj.ChildObject(keySchema); ok {
		if err := decodeSchema(schema, t); err != nil {
			return err
		}
	}

	if rows, ok := obj.ChildArray(keyRows); ok {
		for _, item := range rows.Items() {
			ro, ok := item.(*doctree.Object)
			if !ok {
				return fmt.Errorf("catalog: %s: row must be an object", item.Path())
			}
			row, err := decodeRow(ro, t)
			if err != nil {
				return err
			}
			t.Rows = append(t.Rows, row)
		}
	}

	if children, ok := obj.ChildObject(keyTables); ok {
		return decodeChildren(children, t)
	}
	return nil
}

func decodeSchema(obj *doctree.Object, t *Table) error {
	mods := map[string]record.Modifiers{}
	if mo, ok := obj.ChildObject(record.KeyModifiers); ok {
		for _, col := range mo.Keys() {
			arr, ok := mo.ChildArray(col)
			if !ok {
				return fmt.Errorf("catalog: %s: modifiers must be a list", mo.Path())
			}
			var m record.Modifiers
			for _, item := range arr.Items() {
				s, _ := nativeValue(item).(string)
				f, ok := record.ParseModifier(s)
				if !ok {
					return fmt.Errorf("catalog: %s: unknown modifier %v", item.Path(), nativeValue(item))
				}
				m = m.With(f)
			}
			mods[col] = m
		}
	}

	for _, key := range obj.Keys() {
		switch key {
		case record.KeySchemed:
			n, _ := obj.Child(key)
			b, ok := nativeValue(n).(bool)
			if !ok {
				return fmt.Errorf("catalog: %s: schemed must be a boolean", n.Path())
			}
			t.Schemed = b
		case record.KeyModifiers:
		case record.KeyAttributes:
			ao, ok := obj.ChildObject(key)
			if !ok {
				return fmt.Errorf("catalog: %s.%s must be an object", obj.Path(), key)
			}
			for _, col := range ao.Keys() {
				n, _ := ao.Child(col)
				v, ok := nativeValue(n).(int64)
				if !ok {
					return fmt.Errorf("catalog: %s: counter must be an integer", n.Path())
				}
				t.Attributes[col] = v
			}
		default:
			n, _ := obj.Child(key)
			s, _ := nativeValue(n).(string)
			typ, ok := record.ParseColumnType(s)
			if !ok {
				return fmt.Errorf("catalog: %s: unknown column type %v", n.Path(), nativeValue(n))
			}
			t.Schema.Cols = append(t.Schema.Cols, record.Column{Name: key, Type: typ, Modifiers: mods[key]})
		}
	}
	return nil
}

func decodeRow(obj *doctree.Object, t *Table) (*record.Row, error) {
	row := record.NewRow()
	for _, name := range obj.Keys() {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("catalog: %s: column %q is not in the schema", obj.Path(), name)
		}
		n, _ := obj.Child(name)
		v, err := valueFromNative(nativeValue(n), col.Type)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", n.Path(), err)
		}
		row.Set(name, v)
	}
	return row, nil
}

func nativeValue(n doctree.Node) any {
	if nv, ok := n.(*doctree.Native); ok {
		return nv.Value()
	}
	return n
}

func valueFromNative(x any, typ record.ColumnType) (record.Value, error) {
	if x == nil {
		return record.Null(), nil
	}
	switch typ {
	case record.ColString:
		if s, ok := x.(string); ok {
			return record.String(s), nil
		}
	case record.ColBoolean:
		if b, ok := x.(bool); ok {
			return record.Bool(b), nil
		}
	case record.ColByte, record.ColShort, record.ColInteger, record.ColLong:
		if n, ok := x.(int64); ok {
			return record.FromInt64(typ.Kind(), n), nil
		}
	case record.ColFloat, record.ColDouble:
		var f float64
		switch n := x.(type) {
		case float64:
			f = n
		case int64:
			f = float64(n)
		default:
			return record.Value{}, fmt.Errorf("expected %s, got %T", typ, x)
		}
		if typ == record.ColFloat {
			return record.Float(float32(math.Max(-math.MaxFloat32, math.Min(f, math.MaxFloat32)))), nil
		}
		return record.Double(f), nil
	}
	return record.Value{}, fmt.Errorf("expected %s, got %T", typ, x)
}
