package storage

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tuannm99/novadoc/internal/doctree"
)

// Codec turns a document tree into snapshot bytes and back.
type Codec interface {
	Name() string
	Encode(doc *doctree.Object) ([]byte, error)
	Decode(data []byte) (*doctree.Object, error)
}

// CodecFor maps a configured format name to a Codec.
func CodecFor(format string, pretty bool) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return JSONCodec{Pretty: pretty}, nil
	case "bson":
		return BSONCodec{}, nil
	default:
		return nil, fmt.Errorf("storage: unknown snapshot format %q", format)
	}
}

// JSONCodec writes the document as JSON, keeping key order.
type JSONCodec struct {
	Pretty bool
}

func (JSONCodec) Name() string { return "json" }

func (c JSONCodec) Encode(doc *doctree.Object) ([]byte, error) {
	return doctree.Marshal(doc, c.Pretty)
}

func (JSONCodec) Decode(data []byte) (*doctree.Object, error) {
	return doctree.Parse(data)
}

// BSONCodec writes the document as one BSON document. Integers stay int64 and
// floats stay doubles, with no text round trip in between.
type BSONCodec struct{}

func (BSONCodec) Name() string { return "bson" }

func (BSONCodec) Encode(doc *doctree.Object) ([]byte, error) {
	d, err := toBSONDoc(doc)
	if err != nil {
		return nil, err
	}
	data, err := bson.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("storage: bson encode: %w", err)
	}
	return data, nil
}

func toBSONDoc(obj *doctree.Object) (bson.D, error) {
	d := make(bson.D, 0, obj.Len())
	for _, k := range obj.Keys() {
		n, _ := obj.Child(k)
		v, err := toBSONValue(n)
		if err != nil {
			return nil, err
		}
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d, nil
}

func toBSONValue(n doctree.Node) (any, error) {
	switch x := n.(type) {
	case *doctree.Object:
		return toBSONDoc(x)
	case *doctree.Array:
		a := make(bson.A, 0, x.Len())
		for _, item := range x.Items() {
			v, err := toBSONValue(item)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		}
		return a, nil
	case *doctree.Native:
		return x.Value(), nil
	default:
		return nil, fmt.Errorf("storage: bson encode: unknown node %T", n)
	}
}

func (BSONCodec) Decode(data []byte) (*doctree.Object, error) {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("storage: bson decode: %w", err)
	}
	root := doctree.NewObject("", "")
	if err := fillObject(root, raw); err != nil {
		return nil, fmt.Errorf("storage: bson decode: %w", err)
	}
	return root, nil
}

func fillObject(obj *doctree.Object, raw bson.Raw) error {
	elems, err := raw.Elements()
	if err != nil {
		return err
	}
	for _, e := range elems {
		key, v := e.Key(), e.Value()
		switch v.Type {
		case bson.TypeEmbeddedDocument:
			if err := fillObject(obj.PutObject(key), v.Document()); err != nil {
				return err
			}
		case bson.TypeArray:
			if err := fillArray(obj.PutArray(key), v.Array()); err != nil {
				return err
			}
		default:
			nv, err := nativeFromBSON(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if _, err := obj.Put(key, nv); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillArray(arr *doctree.Array, raw bson.Raw) error {
	vals, err := raw.Values()
	if err != nil {
		return err
	}
	for _, v := range vals {
		switch v.Type {
		case bson.TypeEmbeddedDocument:
			if err := fillObject(arr.AppendObject(), v.Document()); err != nil {
				return err
			}
		case bson.TypeArray:
			if err := fillArray(arr.AppendArray(), v.Array()); err != nil {
				return err
			}
		default:
			nv, err := nativeFromBSON(v)
			if err != nil {
				return err
			}
			if _, err := arr.Append(nv); err != nil {
				return err
			}
		}
	}
	return nil
}

func nativeFromBSON(v bson.RawValue) (any, error) {
	switch v.Type {
	case bson.TypeNull:
		return nil, nil
	case bson.TypeString:
		return v.StringValue(), nil
	case bson.TypeBoolean:
		return v.Boolean(), nil
	case bson.TypeInt32:
		return int64(v.Int32()), nil
	case bson.TypeInt64:
		return v.Int64(), nil
	case bson.TypeDouble:
		return v.Double(), nil
	default:
		return nil, fmt.Errorf("unsupported bson type %s", v.Type)
	}
}
