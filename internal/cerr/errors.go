// Package cerr defines the error taxonomy shared by every layer of the
// query pipeline, grounded on go-mysql-server's use of gopkg.in/src-d/go-errors.v1
// (a typed {Kind, message} error wrapped at each layer boundary) and the
// teacher's per-package {Kind, Message} struct pattern.
package cerr

import "fmt"

// Kind is one of the fault categories from the error surface (spec §7).
type Kind string

const (
	KindSyntaxError          Kind = "SyntaxError"
	KindVariableTypeConflict Kind = "VariableTypeConflict"
	KindTypeError            Kind = "TypeError"
	KindOverflow             Kind = "Overflow"
	KindDivisionByZero       Kind = "DivisionByZero"
	KindConstraintViolation  Kind = "ConstraintViolation"
	KindNotFound             Kind = "NotFound"
	KindCancelled            Kind = "Cancelled"
	KindStorageError         Kind = "StorageError"
	KindInternalError        Kind = "InternalError"
)

// Error is the {kind, message, optional location} shape every fault in the
// system is reported as (spec §6.4).
type Error struct {
	Kind     Kind
	Message  string
	Line     int
	Col      int
	HasLoc   bool
}

func (e *Error) Error() string {
	if e.HasLoc {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is(err, cerr.KindX) style comparisons via a sentinel
// built from New(kind, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a location-less error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt builds an error carrying a source location, used by the parser.
func NewAt(kind Kind, line, col int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Col: col, HasLoc: true}
}

// Sentinel returns a zero-message error of kind, suitable for errors.Is
// comparisons: `errors.Is(err, cerr.Sentinel(cerr.KindNotFound))`.
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// KindOf extracts the Kind from err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if as(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func as(err error, target **Error) bool {
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
