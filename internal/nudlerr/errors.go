// Package nudlerr defines the closed set of error kinds the analyzer and
// emitter surface, plus the annotation-stack and joined-error wrapping used
// to carry call-chain context through to the caller.
//
// Adapted from cuelang.org/go/cue/errors: a Kind-tagged error replaces that
// package's untyped Message/wrapped chain, but the annotation-stack and
// list-of-errors shapes are kept.
package nudlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of error kinds from spec §7.
type Kind int

const (
	// InvalidArgument: bad shape or arity, failed unification.
	InvalidArgument Kind = iota
	// NotFound: missing name, type, or field.
	NotFound
	// AlreadyExists: duplicate declaration.
	AlreadyExists
	// FailedPrecondition: attempting a once-only mutation twice, or an
	// operation that would violate an invariant.
	FailedPrecondition
	// Unimplemented: feature not supported for this variant.
	Unimplemented
	// Internal: invariant violation. "bug; pls. report".
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid-argument"
	case NotFound:
		return "not-found"
	case AlreadyExists:
		return "already-exists"
	case FailedPrecondition:
		return "failed-precondition"
	case Unimplemented:
		return "unimplemented"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the analyzer's error type: a Kind tag, a message, and a stack of
// annotations appended by the call chain, oldest (root cause) first.
type Error struct {
	Kind        Kind
	msg         string
	annotations []string
	wrapped     error
}

// New creates a new Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error of the given kind that wraps an existing error,
// preserving it for errors.Is/errors.As traversal.
func Wrap(kind Kind, wrapped error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), wrapped: wrapped}
}

// Annotate pushes a call-chain context frame onto the error and returns it,
// so the root cause and every enclosing call remain visible in Error().
func (e *Error) Annotate(format string, args ...interface{}) *Error {
	if e == nil {
		return nil
	}
	e.annotations = append(e.annotations, fmt.Sprintf(format, args...))
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for i := len(e.annotations) - 1; i >= 0; i-- {
		b.WriteString(": ")
		b.WriteString(e.annotations[i])
	}
	if e.wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.wrapped.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, nudlerr.Sentinel(nudlerr.NotFound)) against a
// sentinel of that kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.msg == "" && len(other.annotations) == 0
	}
	return false
}

// KindOf extracts the Kind of err, if it (or something it wraps) is an
// *Error; ok is false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Sentinel returns a zero-message Error of the given kind, usable only for
// errors.Is comparisons (e.g. errors.Is(err, nudlerr.Sentinel(NotFound))).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// List aggregates multiple independent failures (e.g. every rejected
// overload candidate) into a single error, one line each, grounded on
// cue/errors.list.
type List struct {
	Context string
	Errs    []error
}

// NewList creates a List with the given context label (e.g. the call-name
// under resolution).
func NewList(context string) *List {
	return &List{Context: context}
}

// Add appends an error produced for one candidate/sub-failure.
func (l *List) Add(err error) {
	if err != nil {
		l.Errs = append(l.Errs, err)
	}
}

// Empty reports whether no failures were added.
func (l *List) Empty() bool { return len(l.Errs) == 0 }

// AsError returns nil if the list is empty, or an *Error of kind
// InvalidArgument joining every recorded rejection reason otherwise.
func (l *List) AsError() error {
	if l.Empty() {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no matching candidate found:", l.Context)
	for _, err := range l.Errs {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return &Error{Kind: InvalidArgument, msg: b.String()}
}
