package netbind

import (
	"slices"
	"testing"
)

func TestEpochMapKeepsAscendingOrder(t *testing.T) {
	var m epochMap[string]
	for _, seq := range []ContextSequence{4, 1, 3, 2} {
		m.getOrCreate(seq, func() string { return "q" })
	}

	var got []ContextSequence
	for seq := range m.all() {
		got = append(got, seq)
	}
	if !slices.Equal(got, []ContextSequence{1, 2, 3, 4}) {
		t.Fatalf("expected ascending sequences, got %v", got)
	}
}

func TestEpochMapPruneBelow(t *testing.T) {
	var m epochMap[int]
	for _, seq := range []ContextSequence{1, 2, 5, 7} {
		m.getOrCreate(seq, func() int { return int(seq) * 10 })
	}

	var evicted []ContextSequence
	n := m.pruneBelow(5, func(seq ContextSequence, _ int) {
		evicted = append(evicted, seq)
	})

	if n != 2 || !slices.Equal(evicted, []ContextSequence{1, 2}) {
		t.Fatalf("expected 1 and 2 evicted, got %d %v", n, evicted)
	}
	if v, ok := m.get(5); !ok || v != 50 {
		t.Errorf("entry at the bound must survive, got %v %v", v, ok)
	}
	if _, ok := m.get(2); ok {
		t.Error("entry below the bound survived")
	}
	if m.len() != 2 {
		t.Errorf("expected 2 entries left, got %d", m.len())
	}
	if m.pruneBelow(5, nil) != 0 {
		t.Error("second prune at the same bound removed entries")
	}
}

func TestEpochMapGetOrCreateReturnsExisting(t *testing.T) {
	var m epochMap[*bindQueue]
	first := m.getOrCreate(3, newBindQueue)
	second := m.getOrCreate(3, newBindQueue)
	if first != second {
		t.Error("getOrCreate replaced an existing queue")
	}
}

func TestAssertPanicsInDebug(t *testing.T) {
	o := New(Options{Debug: true})
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for violated invariant in debug mode")
		}
	}()
	o.assert(false, "broken")
}

func TestAssertLogsInRelease(t *testing.T) {
	o := New(Options{})
	if o.assert(false, "broken") {
		t.Error("assert reported success for a false condition")
	}
}
