package core

import (
	"slices"
	"sync"
)

// Fallback marks a function whose calls are recorded but still delegated to the
// real implementation.
type Fallback struct{}

// NewFallback returns a Fallback response.
func NewFallback() Fallback {
	return Fallback{}
}

// Responses maps function names to their configured responses.
//
// A response is one of: a literal value, a func (invoked with the call's args), a
// *Stack, a Static, or a Fallback. Literal values and funcs are one-shot: they are
// consumed by the first call.
type Responses map[string]any

// Stack is an ordered queue of responses for a single function.
// Each call takes the front entry. Func entries are invoked with the call's args.
type Stack struct {
	mu      sync.Mutex
	entries []any
}

// NewStack returns a Stack that hands out values in order.
func NewStack(values ...any) *Stack {
	return &Stack{entries: slices.Clone(values)}
}

// Remaining returns the number of entries not yet taken. A nil Stack has none.
func (s *Stack) Remaining() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Value takes the front entry and resolves it with args.
// It returns ErrStackEmpty once every entry has been taken.
func (s *Stack) Value(args ...any) (any, error) {
	entry, err := s.pop()
	if err != nil {
		return nil, err
	}

	return resolve(entry, args)
}

func (s *Stack) pop() (any, error) {
	if s == nil {
		return nil, ErrStackEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil, ErrStackEmpty
	}

	entry := s.entries[0]
	s.entries[0] = nil
	s.entries = s.entries[1:]

	return entry, nil
}

// Static marks a response as reusable. A Static value is returned on every call, and
// a Static func is invoked afresh on every call.
type Static struct {
	value any
}

// NewStatic wraps value so it is never consumed.
func NewStatic(value any) Static {
	return Static{value: value}
}

// Value returns the wrapped value.
func (s Static) Value() any {
	return s.value
}

// consumed replaces a one-shot response after its first use.
type consumed struct{}
