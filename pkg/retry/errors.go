package retry

import "fmt"

// Error wraps a Kind with a message and, where applicable, the underlying
// cause, the single error type every package surfaces across its public
// procedure boundary (§7).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a bare Error with no wrapped cause.
func New(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches a Kind to an underlying cause.
func Wrap(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and Success otherwise. Used by the outer retry loop to decide
// whether to retry without every caller needing a type assertion.
func KindOf(err error) Kind {
	if err == nil {
		return Success
	}
	var re *Error
	if ok := asError(err, &re); ok {
		return re.Kind
	}
	return DeviceError
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
