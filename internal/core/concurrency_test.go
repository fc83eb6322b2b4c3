package core_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impfunc/internal/core"
	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestConcurrency_StackEntriesHandedOutOnce verifies concurrent callers never receive
// the same Stack entry twice and never lose one.
func TestConcurrency_StackEntriesHandedOutOnce(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		entries := rapid.IntRange(1, 100).Draw(rt, "entries")
		callers := rapid.IntRange(2, 50).Draw(rt, "callers")

		values := make([]any, entries)
		for i := range values {
			values[i] = i
		}

		fake := core.NewFake(core.Responses{"f": core.NewStack(values...)})

		var (
			mu       sync.Mutex
			seen     = make(map[int]int)
			failures atomic.Int64
			wg       sync.WaitGroup
		)

		for range callers {
			wg.Go(func() {
				for {
					got, err := fake.Call("f")
					if errors.Is(err, core.ErrStackEmpty) {
						failures.Add(1)

						return
					}

					mu.Lock()
					seen[got.(int)]++ //nolint:forcetypeassert // every entry is an int
					mu.Unlock()
				}
			})
		}

		wg.Wait()

		if len(seen) != entries {
			rt.Fatalf("expected %d distinct entries, got %d", entries, len(seen))
		}

		for value, count := range seen {
			if count != 1 {
				rt.Fatalf("entry %d handed out %d times", value, count)
			}
		}

		if failures.Load() != int64(callers) {
			rt.Fatalf("expected each of %d callers to see the empty stack, got %d", callers, failures.Load())
		}
	})
}

// TestConcurrency_OneShotConsumedOnce verifies only one of many concurrent callers
// gets a one-shot response.
func TestConcurrency_OneShotConsumedOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const callers = 64

	var invocations atomic.Int64

	fake := core.NewFake(core.Responses{
		"literal":  "once",
		"callable": func() { invocations.Add(1) },
	})

	var (
		literalWins atomic.Int64
		wg          sync.WaitGroup
	)

	for range callers {
		wg.Go(func() {
			if _, err := fake.Call("literal"); err == nil {
				literalWins.Add(1)
			}

			_, _ = fake.Call("callable")
		})
	}

	wg.Wait()

	g.Expect(literalWins.Load()).To(Equal(int64(1)))
	g.Expect(invocations.Load()).To(Equal(int64(1)))
	g.Expect(fake.WasCalledTimes("literal")).To(Equal(1))
	g.Expect(fake.PendingCallsCount()).To(Equal(0))
}

// TestConcurrency_LedgerRecordsEveryCall verifies concurrent recording loses nothing.
func TestConcurrency_LedgerRecordsEveryCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const (
		callers = 20
		each    = 50
	)

	fake := core.NewFake(core.Responses{"f": core.NewStatic(true)})

	var wg sync.WaitGroup

	for caller := range callers {
		wg.Go(func() {
			for i := range each {
				_, _ = fake.Call("f", caller, i)
				fake.Echo("x")
			}
		})
	}

	wg.Wait()

	g.Expect(fake.WasCalledTimes("f")).To(Equal(callers * each))
	g.Expect(fake.Echos()).To(HaveLen(callers * each))
	g.Expect(fake.Entries()).To(HaveLen(2 * callers * each))
}
