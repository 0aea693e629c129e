// Package transport abstracts the reliable links a replica session runs on.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
)

var ErrClosed = errors.New("transport closed")

type CloseCode int

const (
	CloseNormal CloseCode = iota
	CloseProtocolError
	CloseHostShutdown
)

func (c CloseCode) String() string {
	switch c {
	case CloseNormal:
		return "normal"
	case CloseProtocolError:
		return "protocol error"
	case CloseHostShutdown:
		return "host shutdown"
	}
	return "unknown"
}

// Peer is one established link. Read and Write operate on an ordered,
// reliable byte stream.
type Peer interface {
	io.ReadWriter
	Close(code CloseCode, reason string) error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Listener accepts peers for a session host.
type Listener interface {
	Listen() error
	Accept(ctx context.Context) (Peer, error)
	Close() error
	Addr() net.Addr
}

// Dialer connects a session client to a host.
type Dialer interface {
	Dial(ctx context.Context, addr string) (Peer, error)
}
