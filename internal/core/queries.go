package core

import (
	"fmt"
	"slices"
	"strings"
)

// AllCalls returns every recorded call grouped by function name.
func (f *FakeFunctions) AllCalls() map[string][][]any {
	return f.ledger.All()
}

// Calls returns the args of every call to name, in call order.
func (f *FakeFunctions) Calls(name string) [][]any {
	return f.ledger.Calls(name)
}

// DieCode returns the status passed to the first Die call.
func (f *FakeFunctions) DieCode() (any, error) {
	return f.firstStatus(FuncDie, "Died", "")
}

// Died reports whether Die was called.
func (f *FakeFunctions) Died() bool {
	return f.WasCalled(FuncDie)
}

// Echos returns the text of every Echo call, in call order.
func (f *FakeFunctions) Echos() []string {
	return f.texts(FuncEcho)
}

// Entries returns every recorded call in call order.
func (f *FakeFunctions) Entries() []Entry {
	return f.ledger.Entries()
}

// ExitCode returns the status passed to the first Exit call.
func (f *FakeFunctions) ExitCode() (any, error) {
	return f.firstStatus(FuncExit, "Exited", 0)
}

// Exited reports whether Exit was called.
func (f *FakeFunctions) Exited() bool {
	return f.WasCalled(FuncExit)
}

// First returns the args of the first call to name.
func (f *FakeFunctions) First(name string) ([]any, error) {
	args, ok := f.ledger.First(name)
	if !ok {
		return nil, fmt.Errorf("%w: function %q was not called yet", ErrNeverCalled, name)
	}

	return args, nil
}

// FirstArgument returns the arg at index from the first call to name.
func (f *FakeFunctions) FirstArgument(name string, index int) (any, error) {
	args, err := f.First(name)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(args) {
		return nil, fmt.Errorf("%w: first call to %q has %d args, wanted index %d",
			ErrNoSuchArgument, name, len(args), index)
	}

	return args[index], nil
}

// Output returns the text of every Echo and Print call, concatenated in call order.
func (f *FakeFunctions) Output() string {
	var out strings.Builder

	for _, entry := range f.ledger.Entries() {
		if entry.Name != FuncEcho && entry.Name != FuncPrint {
			continue
		}

		for _, arg := range entry.Args {
			fmt.Fprint(&out, arg)
		}
	}

	return out.String()
}

// PendingCall returns how many responses remain for name.
// It returns ErrNotMocked if name has no configured response.
func (f *FakeFunctions) PendingCall(name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	response, ok := f.responses[name]
	if !ok {
		return 0, fmt.Errorf("%w: function %q was not mocked a call was triggered", ErrNotMocked, name)
	}

	return pendingFor(name, response), nil
}

// PendingCalls returns how many responses remain for each configured function.
//
// A Stack counts its remaining entries and a consumed response counts 0. Responses
// configured for exit, die, echo or print are never served, so they count 0 too.
// Every other response, including a Static or a Fallback, counts 1.
func (f *FakeFunctions) PendingCalls() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := make(map[string]int, len(f.responses))
	for name, response := range f.responses {
		pending[name] = pendingFor(name, response)
	}

	return pending
}

// PendingCallsCount returns the sum of PendingCalls.
func (f *FakeFunctions) PendingCallsCount() int {
	total := 0
	for _, count := range f.PendingCalls() {
		total += count
	}

	return total
}

// Prints returns the text of every Print call, in call order.
func (f *FakeFunctions) Prints() []string {
	return f.texts(FuncPrint)
}

// WasCalled reports whether name was called at least once.
func (f *FakeFunctions) WasCalled(name string) bool {
	return f.ledger.Count(name) > 0
}

// WasCalledTimes returns how many times name was called.
func (f *FakeFunctions) WasCalledTimes(name string) int {
	return f.ledger.Count(name)
}

// WasEchoed reports whether text was passed to Echo.
func (f *FakeFunctions) WasEchoed(text string) bool {
	return slices.Contains(f.Echos(), text)
}

// WasIncluded reports whether Include was called with path.
func (f *FakeFunctions) WasIncluded(path string) bool {
	return f.calledWithPath(FuncInclude, path)
}

// WasIncludedOnce reports whether IncludeOnce was called with path.
func (f *FakeFunctions) WasIncludedOnce(path string) bool {
	return f.calledWithPath(FuncIncludeOnce, path)
}

// WasPrinted reports whether text was passed to Print.
func (f *FakeFunctions) WasPrinted(text string) bool {
	return slices.Contains(f.Prints(), text)
}

// WasRequired reports whether Require was called with path.
func (f *FakeFunctions) WasRequired(path string) bool {
	return f.calledWithPath(FuncRequire, path)
}

// WasRequiredOnce reports whether RequireOnce was called with path.
func (f *FakeFunctions) WasRequiredOnce(path string) bool {
	return f.calledWithPath(FuncRequireOnce, path)
}

func (f *FakeFunctions) calledWithPath(name, path string) bool {
	for _, args := range f.ledger.Calls(name) {
		if len(args) == 0 {
			continue
		}

		if recorded, ok := args[0].(string); ok && recorded == path {
			return true
		}
	}

	return false
}

// firstStatus returns the first arg of the first call to name, or defaultStatus when
// that call had no args.
func (f *FakeFunctions) firstStatus(name, check string, defaultStatus any) (any, error) {
	args, ok := f.ledger.First(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s was never called. Use: %s() first", ErrNeverCalled, name, check)
	}

	if len(args) == 0 {
		return defaultStatus, nil
	}

	return args[0], nil
}

func (f *FakeFunctions) texts(name string) []string {
	calls := f.ledger.Calls(name)
	texts := make([]string, 0, len(calls))

	for _, args := range calls {
		for _, arg := range args {
			texts = append(texts, fmt.Sprint(arg))
		}
	}

	return texts
}

func pendingFor(name string, response any) int {
	if isRecordingFunc(name) {
		return 0
	}

	switch resp := response.(type) {
	case *Stack:
		return resp.Remaining()
	case *Static:
		if resp == nil {
			return 0
		}

		return 1
	case consumed:
		return 0
	default:
		return 1
	}
}
