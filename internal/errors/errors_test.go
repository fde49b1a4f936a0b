package errors

import (
	"bytes"
	"database/sql"
	stderrors "errors"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "kinded error",
			err:      New("feeding.edit", ErrInvalidInput, stderrors.New("bad time")),
			expected: "Error: feeding.edit: invalid input: bad time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "database")
	if got != "Error: failed to load database" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := Store("storage.query", sql.ErrConnDone)

	if !stderrors.Is(err, ErrStoreUnavailable) {
		t.Error("expected errors.Is(err, ErrStoreUnavailable)")
	}
	if !stderrors.Is(err, sql.ErrConnDone) {
		t.Error("expected errors.Is(err, sql.ErrConnDone)")
	}
	if stderrors.Is(err, ErrNotFound) {
		t.Error("did not expect errors.Is(err, ErrNotFound)")
	}

	var typed *Error
	if !stderrors.As(err, &typed) || typed.Op != "storage.query" {
		t.Errorf("errors.As() = %v, op %q", typed, typed.Op)
	}
}

func TestStoreNil(t *testing.T) {
	if err := Store("op", nil); err != nil {
		t.Errorf("Store(op, nil) = %v, want nil", err)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := New("feeding.delete", ErrNotFound, nil)
	if err.Error() != "feeding.delete: not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", Invalid("op", "bad date %q", "x"), http.StatusBadRequest},
		{"not found", New("op", ErrNotFound, nil), http.StatusNotFound},
		{"store", Store("op", stderrors.New("disk full")), http.StatusServiceUnavailable},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(stderrors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
