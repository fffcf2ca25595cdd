package decode

// Binder decodes the declared fields of one object. The first failure is
// kept and later Into calls become no-ops, so a record decoder can list its
// fields and check Err once.
type Binder struct {
	r   *Registry
	obj *Object
	err error
}

// Bind starts decoding the fields of v, which must be an object.
func Bind(r *Registry, v Value) *Binder {
	obj, err := v.Object()
	return &Binder{r: r, obj: obj, err: err}
}

// Into decodes the field stored under the normalized name into dst. A
// missing field leaves dst at its zero value.
func Into[T any](b *Binder, name string, dst *T) {
	if b.err != nil {
		return
	}
	v, ok := b.obj.Lookup(name)
	if !ok {
		var zero T
		*dst = zero
		return
	}
	out, err := Decode[T](b.r, v)
	if err != nil {
		b.err = err
		return
	}
	*dst = out
}

// Field returns the raw value stored under the normalized name.
func (b *Binder) Field(name string) (Value, bool) {
	if b.obj == nil {
		return Value{}, false
	}
	return b.obj.Lookup(name)
}

// Object is the object being bound, or nil when the value was not an
// object.
func (b *Binder) Object() *Object { return b.obj }

// Err returns the first failure.
func (b *Binder) Err() error { return b.err }
