package doctree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Marshal writes n as JSON, preserving object key order.
func Marshal(n Node, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n, pretty, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeIndent(buf *bytes.Buffer, pretty bool, depth int) {
	if !pretty {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("  ", depth))
}

func writeNode(buf *bytes.Buffer, n Node, pretty bool, depth int) error {
	switch x := n.(type) {
	case *Object:
		if len(x.keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeIndent(buf, pretty, depth+1)
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			if pretty {
				buf.WriteByte(' ')
			}
			if err := writeNode(buf, x.children[k], pretty, depth+1); err != nil {
				return err
			}
		}
		writeIndent(buf, pretty, depth)
		buf.WriteByte('}')
	case *Array:
		if len(x.items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range x.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeIndent(buf, pretty, depth+1)
			if err := writeNode(buf, item, pretty, depth+1); err != nil {
				return err
			}
		}
		writeIndent(buf, pretty, depth)
		buf.WriteByte(']')
	case *Native:
		if f, ok := x.value.(float64); ok {
			if err := checkFloat(f); err != nil {
				return err
			}
			buf.WriteString(formatFloat(f))
			return nil
		}
		b, err := json.Marshal(x.value)
		if err != nil {
			return fmt.Errorf("doctree: encode %s: %w", x.path, err)
		}
		buf.Write(b)
	default:
		return fmt.Errorf("doctree: unknown node type %T", n)
	}
	return nil
}

// formatFloat always emits a fraction or exponent so the value reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Parse reads a JSON document whose top level is an object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("doctree: parse: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("doctree: parse: document root must be an object")
	}
	root := NewObject("", "")
	if err := readObject(dec, root); err != nil {
		return nil, fmt.Errorf("doctree: parse: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("doctree: parse: trailing data after document")
	}
	return root, nil
}

func readObject(dec *json.Decoder, obj *Object) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key at %s, got %v", obj.path, tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				if err := readObject(dec, obj.PutObject(key)); err != nil {
					return err
				}
			case '[':
				if err := readArray(dec, obj.PutArray(key)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unexpected %v at %s", v, childPath(obj.path, key))
			}
		default:
			nv, err := nativeFromToken(v)
			if err != nil {
				return err
			}
			if _, err := obj.Put(key, nv); err != nil {
				return err
			}
		}
	}
	_, err := dec.Token() // '}'
	return err
}

func readArray(dec *json.Decoder, arr *Array) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				if err := readObject(dec, arr.AppendObject()); err != nil {
					return err
				}
			case '[':
				if err := readArray(dec, arr.AppendArray()); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unexpected %v in %s", v, arr.path)
			}
		default:
			nv, err := nativeFromToken(v)
			if err != nil {
				return err
			}
			if _, err := arr.Append(nv); err != nil {
				return err
			}
		}
	}
	_, err := dec.Token() // ']'
	return err
}

func nativeFromToken(tok json.Token) (any, error) {
	switch v := tok.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		return v.Float64()
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
