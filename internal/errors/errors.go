package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/julianstephens/feedlog/internal/logger"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrInvalidInput     = stderrors.New("invalid input")
	ErrNotFound         = stderrors.New("not found")
	ErrStoreUnavailable = stderrors.New("store unavailable")
)

// Error wraps an operation name, an error kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New constructs an *Error. A nil cause is allowed.
func New(op string, kind error, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Invalid builds an ErrInvalidInput error with a formatted cause.
func Invalid(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: ErrInvalidInput, Err: fmt.Errorf(format, args...)}
}

// Store wraps a storage failure. nil stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: ErrStoreUnavailable, Err: err}
}

// HTTPStatus maps an error kind onto a response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
