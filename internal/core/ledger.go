package core

import (
	"slices"
	"sync"
)

// Entry is a single recorded call.
type Entry struct {
	Name string
	Args []any
}

// Ledger is an append-only record of calls in call order.
// Accessors return copies, so recorded args cannot be changed after the fact.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string][]int
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{byName: make(map[string][]int)}
}

// All returns every recorded call grouped by function name.
func (l *Ledger) All() map[string][][]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make(map[string][][]any, len(l.byName))
	for name := range l.byName {
		all[name] = l.callsLocked(name)
	}

	return all
}

// Calls returns the args of every call to name, in call order.
// The result is empty, not nil, when name was never called.
func (l *Ledger) Calls(name string) [][]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.callsLocked(name)
}

// Count returns how many times name was called.
func (l *Ledger) Count(name string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.byName[name])
}

// Entries returns every recorded call in call order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	for i, entry := range l.entries {
		entries[i] = Entry{Name: entry.Name, Args: slices.Clone(entry.Args)}
	}

	return entries
}

// First returns the args of the first call to name.
func (l *Ledger) First(name string) ([]any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	indexes := l.byName[name]
	if len(indexes) == 0 {
		return nil, false
	}

	return slices.Clone(l.entries[indexes[0]].Args), true
}

// Record appends a call to the ledger.
func (l *Ledger) Record(name string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := slices.Clone(args)
	if stored == nil {
		stored = []any{}
	}

	l.byName[name] = append(l.byName[name], len(l.entries))
	l.entries = append(l.entries, Entry{Name: name, Args: stored})
}

// callsLocked must be called with l.mu held.
func (l *Ledger) callsLocked(name string) [][]any {
	indexes := l.byName[name]
	calls := make([][]any, len(indexes))

	for i, index := range indexes {
		calls[i] = slices.Clone(l.entries[index].Args)
	}

	return calls
}
