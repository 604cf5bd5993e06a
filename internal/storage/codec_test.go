package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novadoc/internal/doctree"
)

func sampleDoc(t *testing.T) *doctree.Object {
	t.Helper()
	root := doctree.NewObject("", "")
	tbl := root.PutObject("users")
	schema := tbl.PutObject("schema")
	_, err := schema.Put("schemed", true)
	require.NoError(t, err)
	_, err = schema.Put("id", "integer")
	require.NoError(t, err)

	rows := tbl.PutArray("rows")
	r := rows.AppendObject()
	_, _ = r.Put("id", int64(7))
	_, _ = r.Put("ratio", 2.0)
	_, _ = r.Put("name", nil)
	mods := rows.AppendArray()
	_, _ = mods.Append("NN")
	return root
}

func TestCodecFor(t *testing.T) {
	c, err := CodecFor("", false)
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = CodecFor("BSON", false)
	require.NoError(t, err)
	assert.Equal(t, "bson", c.Name())

	_, err = CodecFor("xml", false)
	require.Error(t, err)
}

func TestCodecs_RoundTrip(t *testing.T) {
	doc := sampleDoc(t)
	for _, c := range []Codec{JSONCodec{}, JSONCodec{Pretty: true}, BSONCodec{}} {
		data, err := c.Encode(doc)
		require.NoError(t, err, c.Name())

		back, err := c.Decode(data)
		require.NoError(t, err, c.Name())
		assert.Equal(t, doc.String(false), back.String(false), c.Name())

		users, ok := back.ChildObject("users")
		require.True(t, ok)
		rows, ok := users.ChildArray("rows")
		require.True(t, ok)
		row := rows.At(0).(*doctree.Object)
		id, _ := row.Child("id")
		assert.Equal(t, int64(7), id.(*doctree.Native).Value(), c.Name())
		ratio, _ := row.Child("ratio")
		assert.Equal(t, 2.0, ratio.(*doctree.Native).Value(), c.Name())
	}
}

func TestBSONCodec_RejectsGarbage(t *testing.T) {
	_, err := BSONCodec{}.Decode([]byte("not bson"))
	require.Error(t, err)
}
