package record

// Row is one stored record: column name -> Value, in first-write order.
// Unset columns are absent, which is different from holding Null.
type Row struct {
	names  []string
	values map[string]Value
}

func NewRow() *Row {
	return &Row{values: make(map[string]Value)}
}

func (r *Row) Set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

func (r *Row) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r *Row) Len() int { return len(r.names) }

// Names returns the populated column names in first-write order.
func (r *Row) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Each calls fn for every populated column in first-write order.
func (r *Row) Each(fn func(name string, v Value)) {
	for _, n := range r.names {
		fn(n, r.values[n])
	}
}

