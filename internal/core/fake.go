package core

import (
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"
)

// FakeFunctions is the test implementation of Functions.
//
// It returns the responses it was configured with, records every call in a Ledger,
// and delegates unconfigured functions to a real implementation unless FailOnMissing
// is set. Exit, Die, Echo and Print are always recorded and never reach the real
// implementation.
type FakeFunctions struct {
	mu            sync.Mutex // guards responses
	responses     Responses
	failOnMissing bool
	ledger        *Ledger
	real          Functions
	logger        *zap.Logger
}

// NewFake returns a FakeFunctions that serves the given responses.
// The responses map is copied; consuming a response never changes the caller's map.
// Responses for exit, die, echo and print are never served and never pending.
func NewFake(responses Responses, opts ...FakeOption) *FakeFunctions {
	fake := &FakeFunctions{
		responses: maps.Clone(responses),
		ledger:    NewLedger(),
		logger:    zap.NewNop(),
	}

	if fake.responses == nil {
		fake.responses = make(Responses)
	}

	for _, opt := range opts {
		opt(fake)
	}

	if fake.real == nil {
		fake.real = NewReal(WithLogger(fake.logger))
	}

	for name := range fake.responses {
		if isRecordingFunc(name) {
			fake.logger.Warn("response ignored, the call is only recorded", zap.String("function", name))
		}
	}

	return fake
}

// Call dispatches name according to its configured response.
//
// Unconfigured names return ErrNotMocked under FailOnMissing and are otherwise
// delegated to the real implementation. Exit, die, echo and print are always
// recorded; echo and print with anything but one string arg are recorded and then
// return ErrBadArguments. A consumed one-shot response or an empty
// Stack returns ErrStackConsumed. Errors from configured funcs and from the real
// implementation are returned unmodified.
func (f *FakeFunctions) Call(name string, args ...any) (any, error) {
	if isRecordingFunc(name) {
		result, _, err := callNamed(f, name, args)
		if err != nil {
			f.ledger.Record(name, args)
		}

		return result, err
	}

	return f.run(name, args)
}

// Die records the call without ending the process.
func (f *FakeFunctions) Die(status ...any) {
	f.ledger.Record(FuncDie, status)
}

// Echo records the call without writing anything.
func (f *FakeFunctions) Echo(text string) {
	f.ledger.Record(FuncEcho, []any{text})
}

// Exit records the call without ending the process.
func (f *FakeFunctions) Exit(status ...any) {
	f.ledger.Record(FuncExit, status)
}

// Include dispatches an include of path.
func (f *FakeFunctions) Include(path string) (any, error) {
	return f.run(FuncInclude, []any{path})
}

// IncludeOnce dispatches an include_once of path.
func (f *FakeFunctions) IncludeOnce(path string) (any, error) {
	return f.run(FuncIncludeOnce, []any{path})
}

// Ledger returns the ledger the fake records into.
func (f *FakeFunctions) Ledger() *Ledger {
	return f.ledger
}

// Print records the call without writing anything.
func (f *FakeFunctions) Print(text string) {
	f.ledger.Record(FuncPrint, []any{text})
}

// Require dispatches a require of path.
func (f *FakeFunctions) Require(path string) (any, error) {
	return f.run(FuncRequire, []any{path})
}

// RequireOnce dispatches a require_once of path.
func (f *FakeFunctions) RequireOnce(path string) (any, error) {
	return f.run(FuncRequireOnce, []any{path})
}

// delegate forwards a call to the real implementation.
func (f *FakeFunctions) delegate(name string, args []any) (any, error) {
	if isIncludeFunc(name) {
		return includeVia(f.real, name, args)
	}

	return f.real.Call(name, args...)
}

func (f *FakeFunctions) run(name string, args []any) (any, error) {
	choice, err := f.take(name, args)
	if err != nil {
		f.logger.Debug("call rejected", zap.String("function", name), zap.Error(err))

		return nil, err
	}

	f.logger.Debug("call",
		zap.String("function", name),
		zap.String("source", choice.source),
		zap.Int("args", len(args)))

	switch {
	case choice.delegate:
		return f.delegate(name, args)
	case choice.invoke:
		return callFunc(choice.value, args)
	default:
		return choice.value, nil
	}
}

// take picks the response for a call and records it.
//
// Picking, consuming and recording happen under one lock, so each one-shot response
// and each Stack entry is handed out exactly once. The chosen func or real call runs
// after the lock is released, which lets it call back into the fake.
func (f *FakeFunctions) take(name string, args []any) (choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	response, ok := f.responses[name]
	if !ok {
		if f.failOnMissing {
			return choice{}, fmt.Errorf("%w: function %q was not mocked", ErrNotMocked, name)
		}

		f.ledger.Record(name, args)

		return choice{source: "unmocked", delegate: true}, nil
	}

	switch resp := response.(type) {
	case consumed:
		return choice{}, fmt.Errorf("%w: mocked result of %q function was already consumed", ErrStackConsumed, name)
	case *Stack:
		f.ledger.Record(name, args)

		entry, err := resp.pop()
		if err != nil {
			return choice{}, fmt.Errorf("%w: stack of %q function was already consumed", err, name)
		}

		return chosen("stack", entry), nil
	case Static:
		f.ledger.Record(name, args)

		return chosen("static", resp.value), nil
	case *Static:
		if resp == nil {
			return choice{}, fmt.Errorf("%w: static result of %q function is nil", ErrStackConsumed, name)
		}

		f.ledger.Record(name, args)

		return chosen("static", resp.value), nil
	case Fallback, *Fallback:
		f.ledger.Record(name, args)

		return choice{source: "fallback", delegate: true}, nil
	}

	f.ledger.Record(name, args)
	f.responses[name] = consumed{}

	return chosen("one-shot", response), nil
}

// FakeOption configures a FakeFunctions.
type FakeOption func(*FakeFunctions)

// FailOnMissing makes calls to unconfigured functions return ErrNotMocked instead of
// reaching the real implementation.
func FailOnMissing() FakeOption {
	return func(f *FakeFunctions) {
		f.failOnMissing = true
	}
}

// WithFakeLogger sets the logger used for dispatch diagnostics.
func WithFakeLogger(logger *zap.Logger) FakeOption {
	return func(f *FakeFunctions) {
		f.logger = logger
	}
}

// WithRealFunctions sets the implementation unconfigured and Fallback calls go to.
// By default a RealFunctions with the standard function table is used.
func WithRealFunctions(fns Functions) FakeOption {
	return func(f *FakeFunctions) {
		f.real = fns
	}
}

// choice is the outcome of picking a response.
type choice struct {
	source   string
	value    any
	invoke   bool
	delegate bool
}

func chosen(source string, value any) choice {
	return choice{source: source, value: value, invoke: isCallable(value)}
}
