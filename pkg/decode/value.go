// Package decode turns parsed JSON documents into typed Go values without a
// one-off mapping for every field.
//
// A document is parsed once into a tree of Values. Types are decoded by
// functions registered in a Registry; record decoders pull their declared
// fields out of an Object with a Binder. Object keys are normalized before
// lookup, so "Exif.Image.Make" is found under "ExifImageMake" and
// "geovisio:image" under "geovisio_image".
//
// Missing keys and JSON null decode to the zero value. A value of the wrong
// kind, a URL that does not parse, or a number that does not fit its target
// exactly is an *Error carrying the JSON path of the offending value.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one node of a parsed JSON document together with its path.
type Value struct {
	raw  any
	path string
}

// Parse reads a single JSON document from r. Malformed, truncated or empty
// documents fail with an *Error; failures of r itself are returned wrapped
// as they are.
func Parse(r io.Reader) (Value, error) {
	src := &sourceReader{r: r}
	dec := json.NewDecoder(src)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if src.err != nil {
			return Value{}, fmt.Errorf("read json: %w", src.err)
		}
		var syntax *json.SyntaxError
		switch {
		case errors.As(err, &syntax):
			return Value{}, &Error{Path: "$", Reason: fmt.Sprintf("malformed json at offset %d", syntax.Offset), Err: err}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Value{}, &Error{Path: "$", Reason: "truncated document", Err: err}
		case errors.Is(err, io.EOF):
			return Value{}, &Error{Path: "$", Reason: "empty document", Err: err}
		}
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	return Value{raw: raw, path: "$"}, nil
}

// sourceReader remembers the first non-EOF error of the underlying reader,
// so a document cut short by the source is told apart from one that ends
// early on its own.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (Value, error) {
	return Parse(bytes.NewReader(data))
}

// Kind reports the JSON type of the value.
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindNull
	}
}

// Path is the location of the value inside its document, e.g.
// "$.features[3].properties".
func (v Value) Path() string { return v.path }

// IsNull reports whether the value is JSON null or absent.
func (v Value) IsNull() bool { return v.raw == nil }

// Plain returns the value as ordinary Go data: maps, slices, strings, bools,
// float64 numbers and nil.
func (v Value) Plain() any {
	return plain(v.raw)
}

func plain(raw any) any {
	switch t := raw.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	default:
		return t
	}
}

// Array returns the elements of an array value in document order.
func (v Value) Array() ([]Value, error) {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil, mismatch(v, KindArray)
	}
	out := make([]Value, len(arr))
	for i, e := range arr {
		out[i] = Value{raw: e, path: v.path + "[" + strconv.Itoa(i) + "]"}
	}
	return out, nil
}

// Get returns the field of an object value by its normalized name. It is a
// shortcut for Object followed by Lookup; the boolean is false when the value
// is not an object or the field is missing.
func (v Value) Get(name string) (Value, bool) {
	obj, err := v.Object()
	if err != nil {
		return Value{}, false
	}
	return obj.Lookup(name)
}

func (v Value) str() (string, error) {
	s, ok := v.raw.(string)
	if !ok {
		return "", mismatch(v, KindString)
	}
	return s, nil
}

func (v Value) number() (json.Number, error) {
	n, ok := v.raw.(json.Number)
	if !ok {
		return "", mismatch(v, KindNumber)
	}
	return n, nil
}

func (v Value) boolean() (bool, error) {
	b, ok := v.raw.(bool)
	if !ok {
		return false, mismatch(v, KindBool)
	}
	return b, nil
}

// NormalizeKey maps a JSON object key onto the field name used for lookup:
// periods are dropped and colons become underscores.
func NormalizeKey(key string) string {
	if !strings.ContainsAny(key, ".:") {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch r {
		case '.':
		case ':':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
