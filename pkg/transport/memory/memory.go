// Package memory connects peers inside one process over net.Pipe.
package memory

import (
	"context"
	"net"
	"sync"

	"github.com/QYUbit/replibind/pkg/transport"
)

type pipeAddr string

func (a pipeAddr) Network() string { return "pipe" }
func (a pipeAddr) String() string  { return string(a) }

// Listener is both the listening and the dialing end of an in-process link.
type Listener struct {
	name      string
	pending   chan *Peer
	done      chan struct{}
	closeOnce sync.Once
}

func NewListener(name string) *Listener {
	return &Listener{
		name:    name,
		pending: make(chan *Peer),
		done:    make(chan struct{}),
	}
}

func (l *Listener) Listen() error {
	return nil
}

func (l *Listener) Accept(ctx context.Context) (transport.Peer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, transport.ErrClosed
	case p := <-l.pending:
		return p, nil
	}
}

// Dial hands one end of a new pipe to Accept. addr is ignored.
func (l *Listener) Dial(ctx context.Context, addr string) (transport.Peer, error) {
	local, remote := net.Pipe()
	client := &Peer{Conn: local, local: pipeAddr("client"), remote: pipeAddr(l.name)}
	host := &Peer{Conn: remote, local: pipeAddr(l.name), remote: pipeAddr("client")}

	select {
	case <-ctx.Done():
		local.Close()
		remote.Close()
		return nil, ctx.Err()
	case <-l.done:
		local.Close()
		remote.Close()
		return nil, transport.ErrClosed
	case l.pending <- host:
		return client, nil
	}
}

func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *Listener) Addr() net.Addr {
	return pipeAddr(l.name)
}

type Peer struct {
	net.Conn
	local, remote net.Addr
}

func (p *Peer) Close(transport.CloseCode, string) error {
	return p.Conn.Close()
}

func (p *Peer) LocalAddr() net.Addr  { return p.local }
func (p *Peer) RemoteAddr() net.Addr { return p.remote }
