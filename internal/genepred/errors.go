package genepred

import (
	"errors"
	"fmt"
)

// Error kinds. Callers test with errors.Is.
var (
	// ErrConfig reports an unusable configuration: unknown layout, missing
	// data source, unreadable filter list.
	ErrConfig = errors.New("configuration error")
	// ErrMalformedLine reports a line that cannot be parsed under the active layout.
	ErrMalformedLine = errors.New("malformed line")
	// ErrLogic reports caller misuse, e.g. locating a record twice.
	ErrLogic = errors.New("logic error")
	// ErrIO reports a failure of the underlying line source.
	ErrIO = errors.New("i/o error")
)

// LineError describes a line rejected by the parser. Line holds the raw
// text for diagnostics.
type LineError struct {
	Line   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("format error: %s: failed to parse line %q", e.Reason, e.Line)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

// IOError wraps an error returned by a line source or filter file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// NewIOError returns an *IOError, or nil when err is nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

func logicErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrLogic}, args...)...)
}
