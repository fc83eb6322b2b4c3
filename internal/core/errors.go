package core

import (
	"errors"
	"fmt"
)

// Exported variables.
var (
	// ErrBadArguments is returned when recorded args cannot be passed to a configured func.
	ErrBadArguments = errors.New("bad arguments")
	// ErrIncludeFailed is returned by the require variants when a file cannot be loaded.
	ErrIncludeFailed = errors.New("include failed")
	// ErrNeverCalled is returned by accessors that need at least one recorded call.
	ErrNeverCalled = errors.New("never called")
	// ErrNoSuchArgument is returned when a recorded call has fewer args than requested.
	ErrNoSuchArgument = errors.New("no such argument")
	// ErrNotCallable is returned when registering a value that is not a func.
	ErrNotCallable = errors.New("not callable")
	// ErrNotMocked is returned in strict mode for functions with no configured response.
	ErrNotMocked = errors.New("not mocked")
	// ErrStackConsumed is returned when a one-shot response was already used.
	ErrStackConsumed = errors.New("stack consumed")
	// ErrStackEmpty is returned when a Stack has no entries left.
	// It wraps ErrStackConsumed, so errors.Is matches both.
	ErrStackEmpty = fmt.Errorf("%w: stack is empty", ErrStackConsumed)
	// ErrUndefinedFunction is returned by the real gateway for unknown function names.
	ErrUndefinedFunction = errors.New("undefined function")
)
