package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novadoc/internal/dberr"
	"github.com/tuannm99/novadoc/internal/record"
)

func cols(defs ...record.Column) []record.Column { return defs }

func TestTree_GetOrCreateIsIdempotent(t *testing.T) {
	tr := NewTree()

	a, err := tr.GetOrCreate("shop.orders")
	require.NoError(t, err)
	b, err := tr.GetOrCreate("shop.orders")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "shop.orders", a.Path)
	assert.Equal(t, "orders", a.Name)

	shop, ok := tr.Lookup("shop")
	require.True(t, ok)
	assert.Len(t, shop.Children(), 1)
	assert.Len(t, tr.Root().Children(), 1)

	_, ok = tr.Lookup("nope")
	assert.False(t, ok)
}

func TestTree_GetOrCreateRejectsBadPath(t *testing.T) {
	tr := NewTree()
	for _, p := range []string{"", "  ", "a..b", ".a", "a."} {
		_, err := tr.GetOrCreate(p)
		require.ErrorIs(t, err, dberr.ErrUnknownField, p)
	}
}

func TestTree_DeclareSchema(t *testing.T) {
	tr := NewTree()
	tbl, _ := tr.GetOrCreate("x")

	schema := cols(
		record.Column{Name: "a", Type: record.ColInteger},
		record.Column{Name: "b", Type: record.ColString},
	)
	require.NoError(t, tr.DeclareSchema(tbl, schema))
	assert.True(t, tbl.Schemed)
	assert.Equal(t, 2, tbl.Schema.NumCols())

	// same set, different order: no-op
	require.NoError(t, tr.DeclareSchema(tbl, cols(
		record.Column{Name: "b", Type: record.ColString},
		record.Column{Name: "a", Type: record.ColInteger},
	)))
	assert.Equal(t, "a", tbl.Schema.Cols[0].Name)

	err := tr.DeclareSchema(tbl, cols(record.Column{Name: "a", Type: record.ColInteger}))
	require.ErrorIs(t, err, dberr.ErrSchemaConflict)

	err = tr.DeclareSchema(tbl, cols(
		record.Column{Name: "a", Type: record.ColLong},
		record.Column{Name: "b", Type: record.ColString},
	))
	require.ErrorIs(t, err, dberr.ErrSchemaConflict)
}

func TestValidateSchema_Rejections(t *testing.T) {
	_, err := ValidateSchema(nil, nil)
	require.ErrorIs(t, err, dberr.ErrEmptySchema)

	_, err = ValidateSchema(nil, cols(record.Column{Name: "Modifiers", Type: record.ColString}))
	require.ErrorIs(t, err, dberr.ErrReservedName)

	_, err = ValidateSchema(nil, cols(
		record.Column{Name: "a", Type: record.ColString},
		record.Column{Name: "a", Type: record.ColInteger},
	))
	require.ErrorIs(t, err, dberr.ErrSchemaConflict)

	_, err = ValidateSchema(nil, cols(
		record.Column{Name: "id", Type: record.ColLong, Modifiers: record.Modifiers(0).With(record.AutoIncrement)},
	))
	require.ErrorIs(t, err, dberr.ErrTypeMismatch)
}

func TestTree_AutoIncrementCounters(t *testing.T) {
	tr := NewTree()
	tbl, _ := tr.GetOrCreate("users")
	ai := record.Modifiers(0).With(record.AutoIncrement)
	require.NoError(t, tr.DeclareSchema(tbl, cols(
		record.Column{Name: "id", Type: record.ColInteger, Modifiers: ai},
		record.Column{Name: "name", Type: record.ColString},
	)))
	assert.Equal(t, int64(0), tbl.Counter("id"))

	for i := 0; i < 3; i++ {
		row := record.NewRow()
		row.Set("id", record.Integer(int32(tbl.Counter("id"))))
		idx := tr.AppendRow(tbl, row)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, int64(3), tbl.Counter("id"))

	require.NoError(t, tr.UpdateRow(tbl, 1, "name", record.String("bob")))
	v, ok := tbl.Rows[1].Get("name")
	require.True(t, ok)
	assert.Equal(t, "bob", v.Str())

	require.ErrorIs(t, tr.UpdateRow(tbl, 7, "name", record.Null()), dberr.ErrUnknownField)
}

func TestTree_TableColumnCreatesChild(t *testing.T) {
	tr := NewTree()
	tbl, _ := tr.GetOrCreate("shop")
	require.NoError(t, tr.DeclareSchema(tbl, cols(
		record.Column{Name: "name", Type: record.ColString},
		record.Column{Name: "orders", Type: record.ColTable},
	)))

	child, ok := tr.Lookup("shop.orders")
	require.True(t, ok)
	assert.False(t, child.Schemed)

	var seen []string
	require.NoError(t, tr.Walk(func(tb *Table) error {
		seen = append(seen, tb.Path)
		return nil
	}))
	assert.Equal(t, []string{"shop", "shop.orders"}, seen)
}

func TestCodec_RoundTrip(t *testing.T) {
	tr := NewTree()
	tbl, _ := tr.GetOrCreate("people")
	ai := record.Modifiers(0).With(record.AutoIncrement)
	nn := record.Modifiers(0).With(record.NotNull)
	require.NoError(t, tr.DeclareSchema(tbl, cols(
		record.Column{Name: "id", Type: record.ColInteger, Modifiers: ai.With(record.NotNull)},
		record.Column{Name: "name", Type: record.ColString, Modifiers: nn},
		record.Column{Name: "age", Type: record.ColByte},
		record.Column{Name: "ratio", Type: record.ColFloat},
		record.Column{Name: "ok", Type: record.ColBoolean},
		record.Column{Name: "pets", Type: record.ColTable},
	)))

	row := record.NewRow()
	row.Set("name", record.String("ann"))
	row.Set("id", record.Integer(int32(tbl.Counter("id"))))
	row.Set("age", record.Byte(127))
	row.Set("ratio", record.Float(1.5))
	row.Set("ok", record.Null())
	tr.AppendRow(tbl, row)

	doc, err := Encode(tr)
	require.NoError(t, err)

	schema := doc.String(false)
	assert.Contains(t, schema, `"schemed":true`)
	assert.Contains(t, schema, `"modifiers":{"id":["NN","AI"],"name":["NN"]}`)
	assert.Contains(t, schema, `"attributes":{"id":1}`)
	assert.Contains(t, schema, `"rows":[{"name":"ann","id":0,"age":127,"ratio":1.5,"ok":null}]`)
	assert.Contains(t, schema, `"tables":{"pets":{"schema":{"schemed":false`)

	back, err := Decode(doc)
	require.NoError(t, err)

	got, ok := back.Lookup("people")
	require.True(t, ok)
	assert.True(t, got.Schemed)
	assert.Equal(t, tbl.Schema, got.Schema)
	assert.Equal(t, int64(1), got.Counter("id"))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"name", "id", "age", "ratio", "ok"}, got.Rows[0].Names())

	age, _ := got.Rows[0].Get("age")
	assert.Equal(t, record.Byte(127), age)
	ratio, _ := got.Rows[0].Get("ratio")
	assert.Equal(t, record.Float(1.5), ratio)
	okv, _ := got.Rows[0].Get("ok")
	assert.True(t, okv.IsNull())

	_, ok = back.Lookup("people.pets")
	assert.True(t, ok)
}

func TestDecode_RejectsUnknownColumn(t *testing.T) {
	tr := NewTree()
	tbl, _ := tr.GetOrCreate("t")
	require.NoError(t, tr.DeclareSchema(tbl, cols(record.Column{Name: "a", Type: record.ColString})))
	doc, err := Encode(tr)
	require.NoError(t, err)

	to, _ := doc.ChildObject("t")
	rows, _ := to.ChildArray("rows")
	r := rows.AppendObject()
	_, _ = r.Put("zzz", "x")

	_, err = Decode(doc)
	require.Error(t, err)
}
