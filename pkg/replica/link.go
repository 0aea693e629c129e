package replica

import (
	"bufio"
	"crypto/rand"
	"strings"
	"sync"

	"github.com/QYUbit/replibind/pkg/transport"
	"github.com/QYUbit/replibind/pkg/wire"
)

// Link is one established peer of a session.
type Link struct {
	id       string
	peer     transport.Peer
	reader   *bufio.Reader
	protocol wire.MessageProtocol

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newLink(peer transport.Peer, protocol wire.MessageProtocol) *Link {
	return &Link{
		id:       rand.Text(),
		peer:     peer,
		reader:   bufio.NewReader(peer),
		protocol: protocol,
	}
}

func (l *Link) ID() string {
	return l.id
}

func (l *Link) Send(path string, data []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.protocol.WriteMessage(l.peer, wire.Message{Path: path, Data: data})
}

func (l *Link) Close(code transport.CloseCode, reason string) error {
	var err error
	l.closeOnce.Do(func() {
		err = l.peer.Close(code, reason)
	})
	return err
}

// readLoop forwards messages to deliver until the peer fails. Session
// internal paths are dropped.
func (l *Link) readLoop(deliver func(Inbound)) error {
	for {
		var msg wire.Message
		if err := l.protocol.ReadMessage(&msg, l.reader); err != nil {
			return err
		}
		if strings.HasPrefix(msg.Path, sessionPrefix) {
			continue
		}
		deliver(Inbound{From: l, Path: msg.Path, Data: msg.Data})
	}
}
