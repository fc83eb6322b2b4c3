package core_test

import (
	"errors"
	"testing"

	"github.com/toejough/impfunc/internal/core"
	"pgregory.net/rapid"
)

// TestProperty_StackOfN_AllowsExactlyNCalls verifies a Stack of N entries serves N
// calls in order, with the pending count dropping by one each time, and then fails.
func TestProperty_StackOfN_AllowsExactlyNCalls(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.Int()).Draw(rt, "values")
		entries := make([]any, len(values))

		for i, v := range values {
			entries[i] = v
		}

		fake := core.NewFake(core.Responses{"f": core.NewStack(entries...)})

		for i, want := range values {
			pending, err := fake.PendingCall("f")
			if err != nil || pending != len(values)-i {
				rt.Fatalf("before call %d: pending %d (err %v), want %d", i, pending, err, len(values)-i)
			}

			got, err := fake.Call("f", i)
			if err != nil {
				rt.Fatalf("call %d: unexpected error %v", i, err)
			}

			if got != want {
				rt.Fatalf("call %d: got %v, want %v", i, got, want)
			}
		}

		_, err := fake.Call("f")
		if !errors.Is(err, core.ErrStackConsumed) {
			rt.Fatalf("call %d: expected ErrStackConsumed, got %v", len(values), err)
		}

		if calls := fake.WasCalledTimes("f"); calls != len(values)+1 {
			rt.Fatalf("expected %d recorded calls, got %d", len(values)+1, calls)
		}
	})
}

// TestProperty_OneShot_AllowsExactlyOneCall verifies literal and func responses
// succeed once and then fail, however often they are retried.
func TestProperty_OneShot_AllowsExactlyOneCall(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		value := rapid.String().Draw(rt, "value")
		useFunc := rapid.Bool().Draw(rt, "useFunc")
		retries := rapid.IntRange(1, 10).Draw(rt, "retries")

		var response any = value
		if useFunc {
			response = func() string { return value }
		}

		fake := core.NewFake(core.Responses{"f": response})

		got, err := fake.Call("f")
		if err != nil || got != value {
			rt.Fatalf("first call: got %v (err %v), want %v", got, err, value)
		}

		for i := range retries {
			_, err = fake.Call("f")
			if !errors.Is(err, core.ErrStackConsumed) {
				rt.Fatalf("retry %d: expected ErrStackConsumed, got %v", i, err)
			}
		}

		if calls := fake.WasCalledTimes("f"); calls != 1 {
			rt.Fatalf("expected 1 recorded call, got %d", calls)
		}
	})
}

// TestProperty_Static_NeverDepletes verifies a Static response serves any number of
// calls and counts each one.
func TestProperty_Static_NeverDepletes(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		value := rapid.Int().Draw(rt, "value")
		calls := rapid.IntRange(0, 50).Draw(rt, "calls")

		fake := core.NewFake(core.Responses{"f": core.NewStatic(value)})

		for i := range calls {
			got, err := fake.Call("f")
			if err != nil || got != value {
				rt.Fatalf("call %d: got %v (err %v), want %v", i, got, err, value)
			}
		}

		if got := fake.WasCalledTimes("f"); got != calls {
			rt.Fatalf("expected %d recorded calls, got %d", calls, got)
		}

		if pending, _ := fake.PendingCall("f"); pending != 1 {
			rt.Fatalf("expected pending 1, got %d", pending)
		}
	})
}

// TestProperty_Ledger_MatchesCallSequence verifies the ledger reproduces any sequence
// of calls exactly, in order.
func TestProperty_Ledger_MatchesCallSequence(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c"}

	rapid.Check(t, func(rt *rapid.T) {
		fake := core.NewFake(core.Responses{
			"a": core.NewStatic(nil),
			"b": core.NewStatic(nil),
			"c": core.NewStatic(nil),
		})

		count := rapid.IntRange(0, 30).Draw(rt, "count")
		want := make([]core.Entry, 0, count)

		for i := range count {
			name := rapid.SampledFrom(names).Draw(rt, "name")
			ints := rapid.SliceOfN(rapid.Int(), 0, 3).Draw(rt, "args")

			args := make([]any, len(ints))
			for j, v := range ints {
				args[j] = v
			}

			_, err := fake.Call(name, args...)
			if err != nil {
				rt.Fatalf("call %d: unexpected error %v", i, err)
			}

			want = append(want, core.Entry{Name: name, Args: args})
		}

		got := fake.Entries()
		if len(got) != len(want) {
			rt.Fatalf("expected %d entries, got %d", len(want), len(got))
		}

		for i := range want {
			if got[i].Name != want[i].Name || len(got[i].Args) != len(want[i].Args) {
				rt.Fatalf("entry %d: got %v, want %v", i, got[i], want[i])
			}

			for j := range want[i].Args {
				if got[i].Args[j] != want[i].Args[j] {
					rt.Fatalf("entry %d arg %d: got %v, want %v", i, j, got[i].Args[j], want[i].Args[j])
				}
			}
		}
	})
}
