package netbind

import "sync/atomic"

// ContextData carries the replicated context sequence value. The host is
// authoritative for it; clients receive it from the network session, which
// may write it from a transport goroutine.
type ContextData struct {
	owner *Orchestrator
	value atomic.Uint32
}

// NewContextData returns context data owned by o, initialised to o's current
// sequence.
func NewContextData(owner *Orchestrator) *ContextData {
	d := &ContextData{owner: owner}
	d.value.Store(uint32(owner.GetCurrentContextSequence()))
	return d
}

func (d *ContextData) Value() ContextSequence {
	return ContextSequence(d.value.Load())
}

// Set stores a replicated value. The owner applies it on its next tick.
func (d *ContextData) Set(seq ContextSequence) {
	d.value.Store(uint32(seq))
}

// Activate wires the data into its owning orchestrator.
func (d *ContextData) Activate() {
	d.owner.OnContextDataActivated(d)
}

func (d *ContextData) Deactivate() {
	d.owner.OnContextDataDeactivated(d)
}

// ContextSequencer holds the sequence every queue is compared against.
type ContextSequencer struct {
	current ContextSequence
	data    *ContextData
}

func newContextSequencer() ContextSequencer {
	return ContextSequencer{current: InitialContextSequence}
}

func (s *ContextSequencer) Current() ContextSequence {
	return s.current
}

// refresh pulls the replicated value. It reports whether the current
// sequence changed.
func (s *ContextSequencer) refresh() (prev ContextSequence, changed bool) {
	prev = s.current
	if s.data == nil {
		return prev, false
	}
	if v := s.data.Value(); v != s.current {
		s.current = v
		return prev, true
	}
	return prev, false
}

// advance bumps the sequence and publishes it when data is attached.
func (s *ContextSequencer) advance() ContextSequence {
	s.current++
	if s.data != nil {
		s.data.Set(s.current)
	}
	return s.current
}

func (s *ContextSequencer) reset() {
	s.current = InitialContextSequence
	if s.data != nil {
		s.data.Set(s.current)
	}
}
