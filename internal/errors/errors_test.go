//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	assert.NotEqual(t, ErrValidation, ErrNotFound)
	assert.NotEqual(t, ErrValidation, ErrIO)
	assert.NotEqual(t, ErrNotFound, ErrIO)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "capmgr cm lists itself as a client",
		Location: "/path/to/system.toml",
		Field:    "cm",
		Context:  map[string]string{"Service": "capmgr", "Client": "cm"},
		Hint:     "remove the self dependency",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: /path/to/system.toml")
	assert.Contains(t, output, "Field: cm")
	assert.Contains(t, output, "Service: capmgr")
	assert.Contains(t, output, "capmgr cm lists itself as a client")
	assert.Contains(t, output, "Hint: remove the self dependency")

	// Context keys are rendered in sorted order.
	assert.Less(t, indexOf(output, "Client: cm"), indexOf(output, "Service: capmgr"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(
		"invalid value",
		"/path/to/system.cue",
		"components.0.name",
		"use an identifier",
	)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "/path/to/system.cue", detail.Location)
	assert.Equal(t, "components.0.name", detail.Field)
	assert.Equal(t, "use an identifier", detail.Hint)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("no such file", "/missing.toml", "")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestNewIOError(t *testing.T) {
	err := NewIOError("writing initargs.c", "/out/cm/initargs.c", fs.ErrPermission)

	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Contains(t, err.Error(), "Location: /out/cm/initargs.c")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	exitErr := &ExitError{Code: 2, Err: inner}

	assert.Equal(t, "boom", exitErr.Error())
	assert.True(t, errors.Is(exitErr, inner))
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("bad", "", "", ""), ExitValidationError},
		{"wrapped validation", fmt.Errorf("loading: %w", Wrap(ErrValidation, "schema")), ExitValidationError},
		{"not found", NewNotFoundError("missing", "x.toml", ""), ExitNotFound},
		{"io", NewIOError("writing", "out", fs.ErrPermission), ExitGeneralError},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"explicit exit code", &ExitError{Code: ExitNotFound, Err: ErrValidation}, ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}
