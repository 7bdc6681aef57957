package platform

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error reported by the library and its backends.
type ErrorKind int

const (
	NotInitialized ErrorKind = iota + 1
	NoCurrentContext
	InvalidEnum
	InvalidValue
	OutOfMemory
	APIUnavailable
	VersionUnavailable
	PlatformError
	FormatUnavailable
	NoWindowContext
	CursorUnavailable
	FeatureUnavailable
	FeatureUnimplemented
	PlatformUnavailable
)

var errorKindNames = map[ErrorKind]string{
	NotInitialized:       "not initialized",
	NoCurrentContext:     "no current context",
	InvalidEnum:          "invalid enum",
	InvalidValue:         "invalid value",
	OutOfMemory:          "out of memory",
	APIUnavailable:       "api unavailable",
	VersionUnavailable:   "version unavailable",
	PlatformError:        "platform error",
	FormatUnavailable:    "format unavailable",
	NoWindowContext:      "no window context",
	CursorUnavailable:    "cursor unavailable",
	FeatureUnavailable:   "feature unavailable",
	FeatureUnimplemented: "feature unimplemented",
	PlatformUnavailable:  "platform unavailable",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is the single error type produced by the error-reporting funnel.
type Error struct {
	Kind ErrorKind
	Desc string
	Err  error
}

func (e *Error) Error() string {
	if e.Desc == "" {
		return e.Kind.String()
	}
	return e.Desc
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err,
// &Error{Kind: FeatureUnavailable}) works without comparing descriptions.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Desc == "" || t.Desc == e.Desc)
}

// Errorf builds an *Error without reporting it.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Desc: err.Error(), Err: errors.Unwrap(err)}
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
