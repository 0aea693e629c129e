package replica

import "github.com/QYUbit/replibind/pkg/wire"

func (s *Session) handleLeft(msg Inbound) {
	s.log.Info("link left", "role", s.role, "link", msg.From.ID())
	if s.role != RoleClient {
		return
	}
	clear(s.objects)
	if s.onClosed != nil {
		s.onClosed()
	}
}

func (s *Session) handleObjectAdd(msg Inbound) {
	id, err := decodeObjectID(msg.Data)
	if err != nil || !id.IsValid() {
		s.log.Warn("bad object announcement", "error", err)
		return
	}
	if _, ok := s.objects[id]; !ok {
		s.objects[id] = &Object{id: id}
	}
}

func (s *Session) handleObjectRemove(msg Inbound) {
	id, err := decodeObjectID(msg.Data)
	if err != nil {
		s.log.Warn("bad object removal", "error", err)
		return
	}
	delete(s.objects, id)
}

func (s *Session) handleBindSlice(msg Inbound) {
	m, err := decodeSliceBind(msg.Data)
	if err != nil {
		s.log.Warn("bad slice bind", "error", err)
		return
	}
	if s.binder == nil {
		s.log.Warn("slice bind without binder", "object", m.Object)
		return
	}
	s.binder.SpawnEntityFromSlice(m.Object, m.Context)
}

func (s *Session) handleBindStream(msg Inbound) {
	m, err := decodeStreamSpawn(msg.Data)
	if err != nil {
		s.log.Warn("bad stream spawn", "error", err)
		return
	}
	if s.binder == nil {
		s.log.Warn("stream spawn without binder", "object", m.Object)
		return
	}
	s.binder.SpawnEntityFromStream(m.Payload, m.Desired, m.Object, m.Sequence)
}

func (s *Session) handleContextSequence(msg Inbound) {
	seq, err := wire.DecodeContextSequence(msg.Data)
	if err != nil {
		s.log.Warn("bad context sequence", "error", err)
		return
	}
	if s.context != nil {
		s.context.Set(seq)
	}
}
