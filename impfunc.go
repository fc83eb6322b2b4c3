// Package impfunc puts global, environment-coupled operations (process exit,
// stdout writes, file inclusion, environment lookups, any registered host function)
// behind a Functions interface, so tests can substitute and record them.
//
// Production code takes a Functions and is given NewReal(). Tests give it
// NewFake(responses) and assert against the fake's call ledger.
//
// This is the public API entry point. Implementation lives in internal/core.
package impfunc

import (
	"io"

	"github.com/toejough/impfunc/internal/core"
	"go.uber.org/zap"
)

// Function names with dedicated methods on Functions.
const (
	FuncDie         = core.FuncDie
	FuncEcho        = core.FuncEcho
	FuncExit        = core.FuncExit
	FuncInclude     = core.FuncInclude
	FuncIncludeOnce = core.FuncIncludeOnce
	FuncPrint       = core.FuncPrint
	FuncRequire     = core.FuncRequire
	FuncRequireOnce = core.FuncRequireOnce
)

// Errors re-exported from internal/core.
var (
	ErrBadArguments      = core.ErrBadArguments
	ErrIncludeFailed     = core.ErrIncludeFailed
	ErrNeverCalled       = core.ErrNeverCalled
	ErrNoSuchArgument    = core.ErrNoSuchArgument
	ErrNotCallable       = core.ErrNotCallable
	ErrNotMocked         = core.ErrNotMocked
	ErrStackConsumed     = core.ErrStackConsumed
	ErrStackEmpty        = core.ErrStackEmpty
	ErrUndefinedFunction = core.ErrUndefinedFunction
)

// Entry is a single recorded call.
type Entry = core.Entry

// FakeFunctions is the test implementation of Functions.
type FakeFunctions = core.FakeFunctions

// FakeOption configures a FakeFunctions.
type FakeOption = core.FakeOption

// Fallback marks a function whose calls are recorded but still reach the real implementation.
type Fallback = core.Fallback

// Functions is the seam between code and the global operations it depends on.
type Functions = core.Functions

// IncludeHook runs after a file is loaded by one of the include functions.
type IncludeHook = core.IncludeHook

// Ledger is an append-only record of calls in call order.
type Ledger = core.Ledger

// RealFunctions is the production implementation of Functions.
type RealFunctions = core.RealFunctions

// RealOption configures a RealFunctions.
type RealOption = core.RealOption

// Responses maps function names to their configured responses.
type Responses = core.Responses

// Stack is an ordered queue of responses for a single function.
type Stack = core.Stack

// Static marks a response as reusable.
type Static = core.Static

// TestReporter is the minimal interface NewFakeT needs from test frameworks.
type TestReporter = core.TestReporter

// FailOnMissing makes calls to unconfigured functions return ErrNotMocked.
func FailOnMissing() FakeOption {
	return core.FailOnMissing()
}

// NewFake returns a FakeFunctions that serves the given responses.
func NewFake(responses Responses, opts ...FakeOption) *FakeFunctions {
	return core.NewFake(responses, opts...)
}

// NewFakeT returns a FakeFunctions that reports unused responses when t finishes.
func NewFakeT(t TestReporter, responses Responses, opts ...FakeOption) *FakeFunctions {
	t.Helper()

	return core.NewFakeT(t, responses, opts...)
}

// NewFallback returns a Fallback response.
func NewFallback() Fallback {
	return core.NewFallback()
}

// NewReal returns a RealFunctions with the standard function table.
func NewReal(opts ...RealOption) *RealFunctions {
	return core.NewReal(opts...)
}

// NewStack returns a Stack that hands out values in order.
func NewStack(values ...any) *Stack {
	return core.NewStack(values...)
}

// NewStatic wraps value so it is never consumed.
func NewStatic(value any) Static {
	return core.NewStatic(value)
}

// Options re-exported from internal/core.

// WithExitFunc replaces os.Exit as the way Exit and Die end the process.
func WithExitFunc(exit func(code int)) RealOption {
	return core.WithExitFunc(exit)
}

// WithFakeLogger sets the logger used for dispatch diagnostics.
func WithFakeLogger(logger *zap.Logger) FakeOption {
	return core.WithFakeLogger(logger)
}

// WithFunction registers fn under name in a RealFunctions.
func WithFunction(name string, fn any) RealOption {
	return core.WithFunction(name, fn)
}

// WithIncludeHook sets a hook that runs after each successful file load.
func WithIncludeHook(hook IncludeHook) RealOption {
	return core.WithIncludeHook(hook)
}

// WithLogger sets the logger used by a RealFunctions.
func WithLogger(logger *zap.Logger) RealOption {
	return core.WithLogger(logger)
}

// WithOutput sets where Echo, Print and string exit statuses are written.
func WithOutput(out io.Writer) RealOption {
	return core.WithOutput(out)
}

// WithRealFunctions sets the implementation unconfigured and Fallback calls go to.
func WithRealFunctions(fns Functions) FakeOption {
	return core.WithRealFunctions(fns)
}

// WithoutDefaults leaves the standard host functions out of the function table.
func WithoutDefaults() RealOption {
	return core.WithoutDefaults()
}
