package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Message is one framed unit on a link: a routing path and its payload.
type Message struct {
	Path string
	Data []byte
}

// MessageProtocol frames messages on a byte stream.
type MessageProtocol interface {
	ReadMessage(dest *Message, r io.Reader) error
	WriteMessage(w io.Writer, src Message) error
}

// DefaultProtocol writes uvarint-length-prefixed path and payload.
type DefaultProtocol struct{}

func (DefaultProtocol) ReadMessage(dest *Message, r io.Reader) error {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = byteReader{r}
	}

	path, err := readField(br, r)
	if err != nil {
		return err
	}
	data, err := readField(br, r)
	if err != nil {
		return err
	}

	dest.Path = string(path)
	dest.Data = data
	return nil
}

func (DefaultProtocol) WriteMessage(w io.Writer, src Message) error {
	frame := make([]byte, 0, 2*binary.MaxVarintLen64+len(src.Path)+len(src.Data))
	frame = binary.AppendUvarint(frame, uint64(len(src.Path)))
	frame = append(frame, src.Path...)
	frame = binary.AppendUvarint(frame, uint64(len(src.Data)))
	frame = append(frame, src.Data...)

	_, err := w.Write(frame)
	return err
}

func readField(br io.ByteReader, r io.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if n > MaxFieldLength {
		return nil, fmt.Errorf("%w: %d", ErrTooLarge, n)
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, err
	}
	return p, nil
}

// byteReader reads single bytes without buffering past the frame.
type byteReader struct {
	io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var p [1]byte
	if _, err := io.ReadFull(b.Reader, p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}
