package wire

import (
	"fmt"

	"github.com/QYUbit/replibind/pkg/netbind"
)

// SliceBindContextSize is the encoded size of a SliceBindContext.
const SliceBindContextSize = 16 + 16 + 8 + 4

func WriteSliceBindContext(b *Buffer, c netbind.SliceBindContext) {
	b.WriteUUID(c.TemplateAssetID)
	b.WriteUUID(c.InstanceID)
	b.WriteUint64(uint64(c.DesiredEntityID))
	b.WriteUint32(uint32(c.ContextSequence))
}

func ReadSliceBindContext(b *Buffer) (netbind.SliceBindContext, error) {
	var c netbind.SliceBindContext
	var err error

	if c.TemplateAssetID, err = b.ReadUUID(); err != nil {
		return c, fmt.Errorf("template asset id: %w", err)
	}
	if c.InstanceID, err = b.ReadUUID(); err != nil {
		return c, fmt.Errorf("instance id: %w", err)
	}
	desired, err := b.ReadUint64()
	if err != nil {
		return c, fmt.Errorf("desired entity id: %w", err)
	}
	seq, err := b.ReadUint32()
	if err != nil {
		return c, fmt.Errorf("context sequence: %w", err)
	}
	c.DesiredEntityID = netbind.EntityID(desired)
	c.ContextSequence = netbind.ContextSequence(seq)
	return c, nil
}

// EncodeContextSequence encodes the replicated ContextSequenceValue field.
func EncodeContextSequence(seq netbind.ContextSequence) []byte {
	b := &Buffer{buf: make([]byte, 0, 4)}
	b.WriteUint32(uint32(seq))
	return b.Bytes()
}

func DecodeContextSequence(data []byte) (netbind.ContextSequence, error) {
	v, err := NewBufferFrom(data).ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("context sequence: %w", err)
	}
	return netbind.ContextSequence(v), nil
}
