package decode

import (
	"errors"
	"fmt"
)

// ErrNoDecoder is wrapped by errors for types that were never registered.
var ErrNoDecoder = errors.New("decode: no decoder registered")

// Error reports a structural mismatch between a JSON value and its target.
type Error struct {
	Path   string // JSON path of the offending value
	Value  any    // the offending value, as plain Go data
	Reason string
	Err    error // underlying cause, e.g. a url or domain construction error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "decode " + e.Path + ": " + e.Reason
	if e.Value != nil {
		msg += fmt.Sprintf(" (value %v)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func mismatch(v Value, want Kind) error {
	e := &Error{
		Path:   v.path,
		Reason: "expected " + want.String() + ", got " + v.Kind().String(),
	}
	if k := v.Kind(); k != KindObject && k != KindArray {
		e.Value = v.Plain()
	}
	return e
}

// Fail builds an *Error located at v. Record decoders use it to report
// failures of their own, such as domain invariants.
func Fail(v Value, reason string, err error) error {
	return &Error{Path: v.path, Reason: reason, Err: err}
}
