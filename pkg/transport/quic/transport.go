// Package quic runs replica links over a QUIC control stream.
package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/QYUbit/replibind/pkg/transport"
	"github.com/quic-go/quic-go"
)

// NextProto is the ALPN identifier both ends must offer.
const NextProto = "replibind"

// The dialing side writes helloByte so the control stream becomes visible
// to AcceptStream on the listening side.
const helloByte byte = 0x52

const handshakeTimeout = 2 * time.Second

var ErrTransportNotInitialized = errors.New("quic transport has not been initialized")

var closeCodeMap = map[transport.CloseCode]quic.ApplicationErrorCode{
	transport.CloseNormal:        0x0,
	transport.CloseProtocolError: 0x1,
	transport.CloseHostShutdown:  0x2,
}

type emptyAddr struct{}

func (emptyAddr) Network() string { return "none" }
func (emptyAddr) String() string  { return "uninitialized" }

// Transport is the listening side.
type Transport struct {
	address  string
	tlsCfg   *tls.Config
	quicCfg  *quic.Config
	listener *quic.Listener
}

func NewTransport(addr string, tlsCfg *tls.Config, quicCfg *quic.Config) *Transport {
	return &Transport{
		address: addr,
		tlsCfg:  withNextProto(tlsCfg),
		quicCfg: quicCfg,
	}
}

func (t *Transport) Listen() error {
	l, err := quic.ListenAddr(t.address, t.tlsCfg, t.quicCfg)
	if err != nil {
		return fmt.Errorf("quic listen %s: %w", t.address, err)
	}
	t.listener = l
	return nil
}

func (t *Transport) Accept(ctx context.Context) (transport.Peer, error) {
	if t.listener == nil {
		return nil, ErrTransportNotInitialized
	}

	conn, err := t.listener.Accept(ctx)
	if errors.Is(err, quic.ErrServerClosed) {
		return nil, transport.ErrClosed
	}
	if err != nil {
		return nil, err
	}

	hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	stream, err := conn.AcceptStream(hctx)
	if err != nil {
		conn.CloseWithError(closeCodeMap[transport.CloseProtocolError], "no control stream")
		return nil, fmt.Errorf("accept control stream: %w", err)
	}

	var hello [1]byte
	if _, err := io.ReadFull(stream, hello[:]); err != nil {
		conn.CloseWithError(closeCodeMap[transport.CloseProtocolError], "no hello")
		return nil, fmt.Errorf("read hello from %s: %w", conn.RemoteAddr(), err)
	}
	if hello[0] != helloByte {
		conn.CloseWithError(closeCodeMap[transport.CloseProtocolError], "bad hello")
		return nil, fmt.Errorf("unexpected hello byte %#x from %s", hello[0], conn.RemoteAddr())
	}

	return &Peer{conn: conn, controlStream: stream}, nil
}

func (t *Transport) Close() error {
	if t.listener == nil {
		return ErrTransportNotInitialized
	}
	return t.listener.Close()
}

func (t *Transport) Addr() net.Addr {
	if t.listener == nil {
		return emptyAddr{}
	}
	return t.listener.Addr()
}

// Dialer is the connecting side.
type Dialer struct {
	TLSConfig  *tls.Config
	QUICConfig *quic.Config
}

func (d Dialer) Dial(ctx context.Context, addr string) (transport.Peer, error) {
	conn, err := quic.DialAddr(ctx, addr, withNextProto(d.TLSConfig), d.QUICConfig)
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", addr, err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(closeCodeMap[transport.CloseProtocolError], "")
		return nil, fmt.Errorf("open control stream: %w", err)
	}
	if _, err := stream.Write([]byte{helloByte}); err != nil {
		conn.CloseWithError(closeCodeMap[transport.CloseProtocolError], "")
		return nil, fmt.Errorf("write hello: %w", err)
	}

	return &Peer{conn: conn, controlStream: stream}, nil
}

func withNextProto(cfg *tls.Config) *tls.Config {
	if cfg == nil {
		cfg = &tls.Config{}
	} else {
		cfg = cfg.Clone()
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{NextProto}
	}
	return cfg
}

type Peer struct {
	conn          *quic.Conn
	controlStream *quic.Stream
}

func (p *Peer) Read(b []byte) (int, error) {
	return p.controlStream.Read(b)
}

func (p *Peer) Write(b []byte) (int, error) {
	return p.controlStream.Write(b)
}

func (p *Peer) Close(code transport.CloseCode, reason string) error {
	appCode, ok := closeCodeMap[code]
	if !ok {
		appCode = 0x0
	}
	return p.conn.CloseWithError(appCode, reason)
}

func (p *Peer) LocalAddr() net.Addr {
	return p.conn.LocalAddr()
}

func (p *Peer) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}
