package replica

import (
	"fmt"
	"maps"
	"slices"

	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/wire"
)

// NewObject allocates a network object id. The object is announced once it
// is registered through RegisterLocalObject.
func (s *Session) NewObject() (*Object, error) {
	if s.role != RoleHost {
		return nil, ErrNotHost
	}
	s.nextObjectID++
	return &Object{id: s.nextObjectID}, nil
}

// RegisterLocalObject announces obj, owned by entity, to every client.
func (s *Session) RegisterLocalObject(entity netbind.EntityID, obj netbind.NetworkObject) error {
	if s.role != RoleHost {
		return ErrNotHost
	}
	if !s.IsReady() {
		return netbind.ErrNotReady
	}

	id := obj.ID()
	if existing, ok := s.objects[id]; ok {
		if existing.owner != entity {
			return fmt.Errorf("%w: object %d owned by entity %d", ErrObjectExists, id, existing.owner)
		}
		return nil
	}

	s.objects[id] = &Object{id: id, owner: entity}
	s.broadcast(PathObjectAdd, encodeObjectID(id))
	s.log.Debug("registered local object", "object", id, "entity", entity)
	return nil
}

// RemoveObject withdraws an object together with every bind and spawn that
// targets it.
func (s *Session) RemoveObject(id netbind.NetworkObjectID) error {
	if s.role != RoleHost {
		return ErrNotHost
	}
	if _, ok := s.objects[id]; !ok {
		return nil
	}
	delete(s.objects, id)
	s.replicated = slices.DeleteFunc(s.replicated, func(r replicated) bool {
		return r.object == id
	})
	s.broadcast(PathObjectRemove, encodeObjectID(id))
	return nil
}

// ReplicateSlice tells clients to bind bindTo to the slice entity described
// by ctx. A zero context sequence is replaced by the current one.
func (s *Session) ReplicateSlice(bindTo netbind.NetworkObjectID, ctx netbind.SliceBindContext) error {
	if s.role != RoleHost {
		return ErrNotHost
	}
	if ctx.ContextSequence == 0 {
		ctx.ContextSequence = s.currentSequence()
	}
	s.record(replicated{
		seq:    ctx.ContextSequence,
		object: bindTo,
		path:   PathBindSlice,
		data:   encodeSliceBind(sliceBind{Object: bindTo, Context: ctx}),
	})
	return nil
}

// ReplicateStream tells clients to create an entity from payload and bind
// it to bindTo.
func (s *Session) ReplicateStream(payload []byte, desired netbind.EntityID, bindTo netbind.NetworkObjectID, seq netbind.ContextSequence) error {
	if s.role != RoleHost {
		return ErrNotHost
	}
	if seq == 0 {
		seq = s.currentSequence()
	}
	s.record(replicated{
		seq:    seq,
		object: bindTo,
		path:   PathBindStream,
		data: encodeStreamSpawn(streamSpawn{
			Object:   bindTo,
			Desired:  desired,
			Sequence: seq,
			Payload:  payload,
		}),
	})
	return nil
}

func (s *Session) record(r replicated) {
	s.replicated = append(s.replicated, r)
	s.broadcast(r.path, r.data)
}

// handleJoined brings a new client up to date: context first, then the
// objects, then what should be bound to them.
func (s *Session) handleJoined(msg Inbound) {
	s.log.Info("link joined", "role", s.role, "link", msg.From.ID())
	if s.role != RoleHost {
		return
	}

	s.send(msg.From, PathContextSequence, wire.EncodeContextSequence(s.currentSequence()))

	for _, id := range slices.Sorted(maps.Keys(s.objects)) {
		s.send(msg.From, PathObjectAdd, encodeObjectID(id))
	}
	for _, r := range s.replicated {
		s.send(msg.From, r.path, r.data)
	}
}
