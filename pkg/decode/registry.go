package decode

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync"
)

// Func decodes a non-null Value into T. Decoders for nested types go back
// through the registry they are handed.
type Func[T any] func(r *Registry, v Value) (T, error)

// typeKey gives every Go type a distinct comparable map key without
// reflection.
type typeKey[T any] struct{}

// Registry maps target types to their decoders. It is safe for concurrent
// use; registrations normally happen once at start-up.
type Registry struct {
	mu    sync.RWMutex
	funcs map[any]any
}

// NewRegistry returns a registry with decoders for the scalar targets,
// *url.URL, any, and the common slices and maps of those.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[any]any)}

	Register[string](r, decodeString)
	Register[bool](r, decodeBool)
	Register[float64](r, decodeFloat64)
	Register[float32](r, decodeFloat32)
	Register(r, intDecoder[int](strconv.IntSize))
	Register(r, intDecoder[int8](8))
	Register(r, intDecoder[int16](16))
	Register(r, intDecoder[int32](32))
	Register(r, intDecoder[int64](64))
	Register[*url.URL](r, decodeURL)
	Register[any](r, func(_ *Registry, v Value) (any, error) { return v.Plain(), nil })

	RegisterSlice[string](r)
	RegisterSlice[float64](r)
	RegisterSlice[int](r)
	RegisterSlice[any](r)
	RegisterMap[string](r)
	RegisterMap[any](r)
	return r
}

// Register installs fn as the decoder for T, replacing any previous one.
func Register[T any](r *Registry, fn Func[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[typeKey[T]{}] = fn
}

// RegisterSlice installs a decoder for []E built from the decoder for E.
func RegisterSlice[E any](r *Registry) {
	Register[[]E](r, func(r *Registry, v Value) ([]E, error) { return Slice[E](r, v) })
}

// RegisterMap installs a decoder for map[string]E built from the decoder
// for E.
func RegisterMap[E any](r *Registry) {
	Register[map[string]E](r, func(r *Registry, v Value) (map[string]E, error) { return Map[E](r, v) })
}

// Has reports whether a decoder for T is registered.
func Has[T any](r *Registry) bool {
	_, ok := lookup[T](r)
	return ok
}

func lookup[T any](r *Registry) (Func[T], bool) {
	r.mu.RLock()
	fn, ok := r.funcs[typeKey[T]{}]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn.(Func[T]), true
}

// Decode converts v into T with the registered decoder. JSON null yields the
// zero value of T.
func Decode[T any](r *Registry, v Value) (T, error) {
	var zero T
	fn, ok := lookup[T](r)
	if !ok {
		return zero, &Error{Path: v.path, Reason: fmt.Sprintf("target %T", zero), Err: ErrNoDecoder}
	}
	if v.IsNull() {
		return zero, nil
	}
	return fn(r, v)
}

// Slice decodes every element of an array value as E, keeping document
// order. Length is not checked here; constructors enforce fixed sizes.
func Slice[E any](r *Registry, v Value) ([]E, error) {
	elems, err := v.Array()
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(elems))
	for _, elem := range elems {
		e, err := Decode[E](r, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Map decodes every member of an object value as E. The original JSON keys
// are kept; they are not normalized.
func Map[E any](r *Registry, v Value) (map[string]E, error) {
	obj, err := v.Object()
	if err != nil {
		return nil, err
	}
	out := make(map[string]E, obj.Len())
	for key, raw := range obj.raw {
		e, err := Decode[E](r, Value{raw: raw, path: childPath(obj.path, key)})
		if err != nil {
			return nil, err
		}
		out[key] = e
	}
	return out, nil
}

func decodeString(_ *Registry, v Value) (string, error) {
	return v.str()
}

func decodeBool(_ *Registry, v Value) (bool, error) {
	return v.boolean()
}

func decodeURL(_ *Registry, v Value) (*url.URL, error) {
	s, err := v.str()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, &Error{Path: v.path, Value: s, Reason: "invalid uri", Err: err}
	}
	return u, nil
}

func decodeFloat64(_ *Registry, v Value) (float64, error) {
	n, err := v.number()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, &Error{Path: v.path, Value: n.String(), Reason: "number out of range for float64", Err: err}
	}
	return f, nil
}

func decodeFloat32(_ *Registry, v Value) (float32, error) {
	n, err := v.number()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(n.String(), 32)
	if err != nil {
		return 0, &Error{Path: v.path, Value: n.String(), Reason: "number out of range for float32", Err: err}
	}
	return float32(f), nil
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// intDecoder accepts only numbers whose value is an integer representable in
// the given width. 12.0 and 1e3 are accepted, 12.5 is not.
func intDecoder[T signed](bits int) Func[T] {
	return func(_ *Registry, v Value) (T, error) {
		n, err := v.number()
		if err != nil {
			return 0, err
		}
		i, err := exactInt(n.String(), bits)
		if err != nil {
			return 0, &Error{Path: v.path, Value: n.String(), Reason: fmt.Sprintf("not an exact int%d", bits), Err: err}
		}
		return T(i), nil
	}
}

var (
	errFractional = errors.New("fractional value")
	errOutOfRange = errors.New("value out of range")
)

func exactInt(s string, bits int) (int64, error) {
	i, err := strconv.ParseInt(s, 10, bits)
	if err == nil {
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, errOutOfRange
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errOutOfRange
	}
	if f != math.Trunc(f) {
		return 0, errFractional
	}
	limit := math.Ldexp(1, bits-1)
	if f < -limit || f >= limit {
		return 0, errOutOfRange
	}
	return int64(f), nil
}
