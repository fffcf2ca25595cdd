package decode

import (
	"sort"
	"strconv"
	"strings"
)

// Object is a JSON object with a normalized-key index.
type Object struct {
	path    string
	raw     map[string]any
	byField map[string]string // normalized name -> original key
}

// Object returns the value as an Object. Two keys that normalize to the same
// field name make the object undecodable.
func (v Value) Object() (*Object, error) {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return nil, mismatch(v, KindObject)
	}

	byField := make(map[string]string, len(m))
	for key := range m {
		name := NormalizeKey(key)
		if prev, dup := byField[name]; dup {
			first, second := prev, key
			if second < first {
				first, second = second, first
			}
			return nil, &Error{
				Path:   v.path,
				Reason: "keys " + strconv.Quote(first) + " and " + strconv.Quote(second) + " both normalize to " + strconv.Quote(name),
			}
		}
		byField[name] = key
	}
	return &Object{path: v.path, raw: m, byField: byField}, nil
}

// Path is the location of the object inside its document.
func (o *Object) Path() string { return o.path }

// Len is the number of keys in the object.
func (o *Object) Len() int { return len(o.raw) }

// Lookup returns the value stored under the normalized field name.
func (o *Object) Lookup(name string) (Value, bool) {
	key, ok := o.byField[name]
	if !ok {
		return Value{}, false
	}
	return o.member(key), true
}

// Keys returns the original JSON keys, sorted.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Member returns the value stored under an original JSON key.
func (o *Object) Member(key string) (Value, bool) {
	if _, ok := o.raw[key]; !ok {
		return Value{}, false
	}
	return o.member(key), true
}

func (o *Object) member(key string) Value {
	return Value{raw: o.raw[key], path: childPath(o.path, key)}
}

func childPath(parent, key string) string {
	if key != "" && !strings.ContainsAny(key, ".[]\" ") {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}
