package core

import (
	"sort"
)

// TestReporter is the minimal interface NewFakeT needs from test frameworks.
// It is satisfied by *testing.T and *testing.B.
type TestReporter interface {
	Cleanup(cleanupFunc func())
	Errorf(format string, args ...any)
	Helper()
}

// NewFakeT returns a FakeFunctions scoped to a test. When the test finishes, every
// one-shot response or Stack entry that was never used is reported as an error.
// Static and Fallback responses are never reported.
func NewFakeT(t TestReporter, responses Responses, opts ...FakeOption) *FakeFunctions {
	t.Helper()

	fake := NewFake(responses, opts...)

	t.Cleanup(func() {
		unused := fake.unused()

		names := make([]string, 0, len(unused))
		for name := range unused {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			t.Errorf("function %q has %d unused mocked result(s)", name, unused[name])
		}
	})

	return fake
}

// unused returns the count of unused responses per function, leaving out functions
// with nothing left and reusable responses.
func (f *FakeFunctions) unused() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	unused := make(map[string]int)

	for name, response := range f.responses {
		switch response.(type) {
		case Static, *Static, Fallback, *Fallback:
			continue
		}

		if count := pendingFor(name, response); count > 0 {
			unused[name] = count
		}
	}

	return unused
}
