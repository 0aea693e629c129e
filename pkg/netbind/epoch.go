package netbind

import (
	"cmp"
	"iter"
	"slices"
)

type epochEntry[V any] struct {
	seq   ContextSequence
	value V
}

// epochMap is a map keyed by context sequence that iterates in ascending
// sequence order and can drop every entry below a bound in one pass.
type epochMap[V any] struct {
	entries []epochEntry[V]
}

func compareEntry[V any](e epochEntry[V], seq ContextSequence) int {
	return cmp.Compare(e.seq, seq)
}

// lowerBound returns the index of the first entry whose sequence is >= seq.
func (m *epochMap[V]) lowerBound(seq ContextSequence) int {
	i, _ := slices.BinarySearchFunc(m.entries, seq, compareEntry[V])
	return i
}

func (m *epochMap[V]) get(seq ContextSequence) (V, bool) {
	i, found := slices.BinarySearchFunc(m.entries, seq, compareEntry[V])
	if !found {
		var zero V
		return zero, false
	}
	return m.entries[i].value, true
}

func (m *epochMap[V]) getOrCreate(seq ContextSequence, create func() V) V {
	i, found := slices.BinarySearchFunc(m.entries, seq, compareEntry[V])
	if found {
		return m.entries[i].value
	}
	v := create()
	m.entries = slices.Insert(m.entries, i, epochEntry[V]{seq: seq, value: v})
	return v
}

// pruneBelow removes every entry with a sequence strictly below seq, calling
// evict for each in ascending order. It returns the number removed.
func (m *epochMap[V]) pruneBelow(seq ContextSequence, evict func(ContextSequence, V)) int {
	n := m.lowerBound(seq)
	if n == 0 {
		return 0
	}
	if evict != nil {
		for _, e := range m.entries[:n] {
			evict(e.seq, e.value)
		}
	}
	m.entries = slices.Delete(m.entries, 0, n)
	return n
}

func (m *epochMap[V]) clear(evict func(ContextSequence, V)) {
	if evict != nil {
		for _, e := range m.entries {
			evict(e.seq, e.value)
		}
	}
	m.entries = nil
}

func (m *epochMap[V]) all() iter.Seq2[ContextSequence, V] {
	return func(yield func(ContextSequence, V) bool) {
		for _, e := range m.entries {
			if !yield(e.seq, e.value) {
				return
			}
		}
	}
}

func (m *epochMap[V]) len() int {
	return len(m.entries)
}
