package wire

import "fmt"

// EntityRecord is the serialized form of one entity, used for stream spawns
// and for entities inside slice templates.
type EntityRecord struct {
	Name      string
	Networked bool
	// Components is opaque component state keyed by component name.
	Components map[string][]byte
}

const entityRecordVersion = 1

func EncodeEntity(r EntityRecord) []byte {
	b := NewBuffer()
	b.WriteByte(entityRecordVersion)
	b.WriteString(r.Name)
	b.WriteBool(r.Networked)
	b.WriteUvarint(uint64(len(r.Components)))
	for name, data := range r.Components {
		b.WriteString(name)
		b.WriteBytes(data)
	}
	return b.Bytes()
}

func DecodeEntity(data []byte) (EntityRecord, error) {
	var r EntityRecord
	b := NewBufferFrom(data)

	version, err := b.ReadByte()
	if err != nil {
		return r, fmt.Errorf("entity version: %w", err)
	}
	if version != entityRecordVersion {
		return r, fmt.Errorf("unsupported entity record version %d", version)
	}
	if r.Name, err = b.ReadString(); err != nil {
		return r, fmt.Errorf("entity name: %w", err)
	}
	if r.Networked, err = b.ReadBool(); err != nil {
		return r, fmt.Errorf("entity networked flag: %w", err)
	}
	n, err := b.ReadUvarint()
	if err != nil {
		return r, fmt.Errorf("component count: %w", err)
	}
	if n > uint64(b.Remaining()) {
		return r, fmt.Errorf("%w: %d components", ErrTooLarge, n)
	}
	if n > 0 {
		r.Components = make(map[string][]byte, n)
	}
	for range n {
		name, err := b.ReadString()
		if err != nil {
			return r, fmt.Errorf("component name: %w", err)
		}
		if r.Components[name], err = b.ReadBytes(); err != nil {
			return r, fmt.Errorf("component %q: %w", name, err)
		}
	}
	return r, nil
}
