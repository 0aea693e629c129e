package replica

import (
	"fmt"

	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/wire"
)

const (
	PathObjectAdd       = "object.add"
	PathObjectRemove    = "object.remove"
	PathBindSlice       = "bind.slice"
	PathBindStream      = "bind.stream"
	PathContextSequence = "context.sequence"

	// Paths below the session prefix are produced locally and never
	// accepted from a link.
	sessionPrefix     = "session."
	pathSessionJoined = "session.joined"
	pathSessionLeft   = "session.left"
)

func encodeObjectID(id netbind.NetworkObjectID) []byte {
	b := wire.NewBuffer()
	b.WriteUint32(uint32(id))
	return b.Bytes()
}

func decodeObjectID(data []byte) (netbind.NetworkObjectID, error) {
	v, err := wire.NewBufferFrom(data).ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("object id: %w", err)
	}
	return netbind.NetworkObjectID(v), nil
}

type sliceBind struct {
	Object  netbind.NetworkObjectID
	Context netbind.SliceBindContext
}

func encodeSliceBind(m sliceBind) []byte {
	b := wire.NewBuffer()
	b.WriteUint32(uint32(m.Object))
	wire.WriteSliceBindContext(b, m.Context)
	return b.Bytes()
}

func decodeSliceBind(data []byte) (sliceBind, error) {
	var m sliceBind
	b := wire.NewBufferFrom(data)

	obj, err := b.ReadUint32()
	if err != nil {
		return m, fmt.Errorf("slice bind object: %w", err)
	}
	m.Object = netbind.NetworkObjectID(obj)
	if m.Context, err = wire.ReadSliceBindContext(b); err != nil {
		return m, fmt.Errorf("slice bind: %w", err)
	}
	return m, nil
}

type streamSpawn struct {
	Object   netbind.NetworkObjectID
	Desired  netbind.EntityID
	Sequence netbind.ContextSequence
	Payload  []byte
}

func encodeStreamSpawn(m streamSpawn) []byte {
	b := wire.NewBuffer()
	b.WriteUint32(uint32(m.Object))
	b.WriteUint64(uint64(m.Desired))
	b.WriteUint32(uint32(m.Sequence))
	b.WriteBytes(m.Payload)
	return b.Bytes()
}

func decodeStreamSpawn(data []byte) (streamSpawn, error) {
	var m streamSpawn
	b := wire.NewBufferFrom(data)

	obj, err := b.ReadUint32()
	if err != nil {
		return m, fmt.Errorf("stream spawn object: %w", err)
	}
	desired, err := b.ReadUint64()
	if err != nil {
		return m, fmt.Errorf("stream spawn desired entity: %w", err)
	}
	seq, err := b.ReadUint32()
	if err != nil {
		return m, fmt.Errorf("stream spawn sequence: %w", err)
	}
	if m.Payload, err = b.ReadBytes(); err != nil {
		return m, fmt.Errorf("stream spawn payload: %w", err)
	}
	m.Object = netbind.NetworkObjectID(obj)
	m.Desired = netbind.EntityID(desired)
	m.Sequence = netbind.ContextSequence(seq)
	return m, nil
}
