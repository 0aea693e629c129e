// Package wire holds the binary encodings exchanged between sessions.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

var (
	ErrInvalidVarint = errors.New("invalid varint encoding")
	ErrTooLarge      = errors.New("length exceeds limit")
)

// MaxFieldLength bounds every length-prefixed field.
const MaxFieldLength = 16 << 20

// Buffer is an append-only writer and a sequential reader over one byte
// slice. Fixed-width integers are little endian.
type Buffer struct {
	buf []byte
	pos int
}

func NewBuffer() *Buffer {
	return &Buffer{buf: make([]byte, 0, 256)}
}

func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{buf: data}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer[pos=%d len=%d cap=%d]", b.pos, len(b.buf), cap(b.buf))
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

func (b *Buffer) Remaining() int {
	return len(b.buf) - b.pos
}

func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.pos = 0
}

func (b *Buffer) WriteByte(v byte) error {
	b.buf = append(b.buf, v)
	return nil
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
		return
	}
	b.buf = append(b.buf, 0)
}

func (b *Buffer) WriteUvarint(x uint64) {
	b.buf = binary.AppendUvarint(b.buf, x)
}

func (b *Buffer) WriteUint32(x uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, x)
}

func (b *Buffer) WriteUint64(x uint64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, x)
}

func (b *Buffer) WriteUUID(id uuid.UUID) {
	b.buf = append(b.buf, id[:]...)
}

// WriteBytes writes p prefixed with its uvarint length.
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteUvarint(uint64(len(p)))
	b.buf = append(b.buf, p...)
}

func (b *Buffer) WriteString(s string) {
	b.WriteUvarint(uint64(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *Buffer) need(n int) error {
	remaining := len(b.buf) - b.pos
	if remaining == 0 {
		return io.EOF
	}
	if remaining < n {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (b *Buffer) ReadByte() (byte, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.buf[b.pos]
	b.pos++
	return v, nil
}

func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	return v != 0, err
}

func (b *Buffer) ReadUvarint() (uint64, error) {
	if b.pos >= len(b.buf) {
		return 0, io.EOF
	}
	val, n := binary.Uvarint(b.buf[b.pos:])
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if n < 0 {
		return 0, ErrInvalidVarint
	}
	b.pos += n
	return val, nil
}

func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	val := binary.LittleEndian.Uint32(b.buf[b.pos:])
	b.pos += 4
	return val, nil
}

func (b *Buffer) ReadUint64() (uint64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	val := binary.LittleEndian.Uint64(b.buf[b.pos:])
	b.pos += 8
	return val, nil
}

func (b *Buffer) ReadUUID() (uuid.UUID, error) {
	var id uuid.UUID
	if err := b.need(len(id)); err != nil {
		return id, err
	}
	copy(id[:], b.buf[b.pos:])
	b.pos += len(id)
	return id, nil
}

// ReadBytes reads a length-prefixed field into a fresh slice.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > MaxFieldLength {
		return nil, fmt.Errorf("%w: %d", ErrTooLarge, n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	if err := b.need(int(n)); err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	p := make([]byte, n)
	copy(p, b.buf[b.pos:])
	b.pos += int(n)
	return p, nil
}

func (b *Buffer) ReadString() (string, error) {
	p, err := b.ReadBytes()
	return string(p), err
}
