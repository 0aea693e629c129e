// Package websockets runs replica links over websocket binary messages.
package websockets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/QYUbit/replibind/pkg/transport"
	"github.com/gorilla/websocket"
)

var closeCodeMap = map[transport.CloseCode]int{
	transport.CloseNormal:        websocket.CloseNormalClosure,
	transport.CloseProtocolError: websocket.CloseProtocolError,
	transport.CloseHostShutdown:  websocket.CloseGoingAway,
}

// Transport is the listening side. It is an http.Handler, so it can be
// mounted on an existing server instead of calling Listen.
type Transport struct {
	address  string
	path     string
	upgrader websocket.Upgrader

	connections chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once

	listener net.Listener
	server   *http.Server
}

func NewTransport(addr, path string) *Transport {
	if path == "" {
		path = "/"
	}
	return &Transport{
		address: addr,
		path:    path,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		connections: make(chan *websocket.Conn, 16),
		done:        make(chan struct{}),
	}
}

// SetOriginCheck replaces the upgrader's same-origin policy.
func (t *Transport) SetOriginCheck(check func(r *http.Request) bool) {
	t.upgrader.CheckOrigin = check
}

func (t *Transport) Listen() error {
	l, err := net.Listen("tcp", t.address)
	if err != nil {
		return fmt.Errorf("websocket listen %s: %w", t.address, err)
	}
	mux := http.NewServeMux()
	mux.Handle(t.path, t)

	t.listener = l
	t.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go t.server.Serve(l)
	return nil
}

func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case t.connections <- conn:
	case <-t.done:
		conn.Close()
	}
}

func (t *Transport) Accept(ctx context.Context) (transport.Peer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, transport.ErrClosed
	case conn := <-t.connections:
		return &Peer{conn: conn}, nil
	}
}

func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if t.server != nil {
			err = t.server.Close()
		}
	})
	return err
}

func (t *Transport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Dialer is the connecting side. Addresses are websocket URLs.
type Dialer struct {
	Header http.Header
}

func (d Dialer) Dial(ctx context.Context, addr string) (transport.Peer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, d.Header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", addr, err)
	}
	return &Peer{conn: conn}, nil
}

// Peer presents a sequence of binary messages as one byte stream.
type Peer struct {
	conn   *websocket.Conn
	reader io.Reader
}

func (p *Peer) Read(b []byte) (int, error) {
	for {
		if p.reader == nil {
			_, r, err := p.conn.NextReader()
			if err != nil {
				return 0, err
			}
			p.reader = r
		}
		n, err := p.reader.Read(b)
		if errors.Is(err, io.EOF) {
			p.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (p *Peer) Write(b []byte) (int, error) {
	if err := p.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *Peer) Close(code transport.CloseCode, reason string) error {
	wsCode, ok := closeCodeMap[code]
	if !ok {
		wsCode = websocket.CloseNormalClosure
	}

	var lastErr error

	err := p.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(wsCode, reason),
		time.Now().Add(time.Second),
	)
	if err != nil {
		lastErr = err
	}

	if err := p.conn.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

func (p *Peer) LocalAddr() net.Addr {
	return p.conn.LocalAddr()
}

func (p *Peer) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}
