// Package doctree is the generic JSON-like node tree a document is stored in.
// Objects keep their keys in insertion order so a saved document reads back
// exactly as it was written.
package doctree

import (
	"fmt"
	"math"
	"strconv"
)

// Node is any element of the tree.
type Node interface {
	// Name is the key (or index) under which the node is stored in its parent.
	Name() string
	// Path is the dotted path from the root. The root has an empty path.
	Path() string

	IsObject() bool
	IsArray() bool
	IsNative() bool
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

type base struct {
	path string
	name string
}

func (b base) Name() string { return b.name }
func (b base) Path() string { return b.path }

// Object is an ordered key -> Node map.
type Object struct {
	base
	keys     []string
	children map[string]Node
}

// NewObject creates a detached object. Pass an empty path for a document root.
func NewObject(path, name string) *Object {
	return &Object{
		base:     base{path: path, name: name},
		children: make(map[string]Node),
	}
}

func (o *Object) IsObject() bool { return true }
func (o *Object) IsArray() bool  { return false }
func (o *Object) IsNative() bool { return false }

func (o *Object) HasChild(name string) bool {
	_, ok := o.children[name]
	return ok
}

func (o *Object) Child(name string) (Node, bool) {
	n, ok := o.children[name]
	return n, ok
}

// ChildObject returns the named child when it is an object.
func (o *Object) ChildObject(name string) (*Object, bool) {
	n, ok := o.children[name]
	if !ok {
		return nil, false
	}
	obj, ok := n.(*Object)
	return obj, ok
}

// ChildArray returns the named child when it is an array.
func (o *Object) ChildArray(name string) (*Array, bool) {
	n, ok := o.children[name]
	if !ok {
		return nil, false
	}
	arr, ok := n.(*Array)
	return arr, ok
}

func (o *Object) set(name string, n Node) {
	if _, ok := o.children[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.children[name] = n
}

// Put stores a primitive value under name, replacing any previous child.
// Accepted values: nil, string, bool, any Go integer or float.
func (o *Object) Put(name string, v any) (*Native, error) {
	nv, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("doctree: put %s: %w", childPath(o.path, name), err)
	}
	n := &Native{base: base{path: childPath(o.path, name), name: name}, value: nv}
	o.set(name, n)
	return n, nil
}

// PutObject creates (or replaces) an empty child object.
func (o *Object) PutObject(name string) *Object {
	child := NewObject(childPath(o.path, name), name)
	o.set(name, child)
	return child
}

// PutArray creates (or replaces) an empty child array.
func (o *Object) PutArray(name string) *Array {
	child := &Array{base: base{path: childPath(o.path, name), name: name}}
	o.set(name, child)
	return child
}

// Remove deletes the named child. It reports whether the child existed.
func (o *Object) Remove(name string) bool {
	if _, ok := o.children[name]; !ok {
		return false
	}
	delete(o.children, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns child names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) String(pretty bool) string {
	b, err := Marshal(o, pretty)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// Array is an ordered list of nodes.
type Array struct {
	base
	items []Node
}

func (a *Array) IsObject() bool { return false }
func (a *Array) IsArray() bool  { return true }
func (a *Array) IsNative() bool { return false }

func (a *Array) nextName() string { return strconv.Itoa(len(a.items)) }

// Append adds a primitive value at the end of the array.
func (a *Array) Append(v any) (*Native, error) {
	nv, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("doctree: append %s: %w", a.path, err)
	}
	name := a.nextName()
	n := &Native{base: base{path: childPath(a.path, name), name: name}, value: nv}
	a.items = append(a.items, n)
	return n, nil
}

// AppendObject adds an empty object at the end of the array.
func (a *Array) AppendObject() *Object {
	name := a.nextName()
	obj := NewObject(childPath(a.path, name), name)
	a.items = append(a.items, obj)
	return obj
}

// AppendArray adds an empty array at the end of the array.
func (a *Array) AppendArray() *Array {
	name := a.nextName()
	arr := &Array{base: base{path: childPath(a.path, name), name: name}}
	a.items = append(a.items, arr)
	return arr
}

func (a *Array) Len() int { return len(a.items) }

func (a *Array) At(i int) Node { return a.items[i] }

// Items returns the elements in order.
func (a *Array) Items() []Node {
	out := make([]Node, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Array) String(pretty bool) string {
	b, err := Marshal(a, pretty)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// Native is a leaf holding nil, string, bool, int64 or float64.
type Native struct {
	base
	value any
}

func (n *Native) IsObject() bool { return false }
func (n *Native) IsArray() bool  { return false }
func (n *Native) IsNative() bool { return true }

func (n *Native) Value() any { return n.value }

func (n *Native) String(pretty bool) string {
	b, err := Marshal(n, pretty)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		// keep the shortest decimal form of the float32, not its float64 widening
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported native type %T", v)
	}
}

func checkFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("doctree: %v cannot be encoded", f)
	}
	return nil
}
