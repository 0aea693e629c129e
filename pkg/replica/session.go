package replica

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/QYUbit/replibind/pkg/axlog"
	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/transport"
	"github.com/QYUbit/replibind/pkg/wire"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotHost        = errors.New("session is not the host")
	ErrObjectExists   = errors.New("network object already registered")
	ErrSessionRunning = errors.New("session is already running")
	ErrHostLost       = errors.New("connection to host lost")
)

// Binder receives replicated spawn instructions on clients.
// *netbind.Orchestrator implements it.
type Binder interface {
	SpawnEntityFromSlice(bindTo netbind.NetworkObjectID, ctx netbind.SliceBindContext)
	SpawnEntityFromStream(payload []byte, desired netbind.EntityID, bindTo netbind.NetworkObjectID, seq netbind.ContextSequence)
}

type Role int

const (
	RoleHost Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

type Options struct {
	// Protocol defaults to wire.DefaultProtocol.
	Protocol wire.MessageProtocol
	Logger   axlog.Logger
	// OnClosed runs inside OnTick after a client lost its host.
	OnClosed func()
}

// Object is a network object known to the session.
type Object struct {
	id    netbind.NetworkObjectID
	owner netbind.EntityID
}

func (o *Object) ID() netbind.NetworkObjectID { return o.id }

// Owner is the host entity that registered the object. It is invalid on
// clients.
func (o *Object) Owner() netbind.EntityID { return o.owner }

// replicated is a bind or spawn kept for clients that join later.
type replicated struct {
	seq    netbind.ContextSequence
	object netbind.NetworkObjectID
	path   string
	data   []byte
}

type Session struct {
	role     Role
	listener transport.Listener
	dialer   transport.Dialer
	addr     string
	protocol wire.MessageProtocol
	log      axlog.Logger
	onClosed func()

	router  *Router
	binder  Binder
	context *netbind.ContextData

	ready   atomic.Bool
	running atomic.Bool

	mu    sync.Mutex
	inbox []Inbound
	links map[string]*Link

	objects      map[netbind.NetworkObjectID]*Object
	nextObjectID netbind.NetworkObjectID
	replicated   []replicated
	published    netbind.ContextSequence
}

// NewHost returns a session that accepts clients from l.
func NewHost(l transport.Listener, opts Options) *Session {
	s := newSession(RoleHost, opts)
	s.listener = l
	return s
}

// NewClient returns a session that connects to the host at addr.
func NewClient(d transport.Dialer, addr string, opts Options) *Session {
	s := newSession(RoleClient, opts)
	s.dialer = d
	s.addr = addr
	return s
}

func newSession(role Role, opts Options) *Session {
	s := &Session{
		role:     role,
		protocol: opts.Protocol,
		log:      axlog.OrNop(opts.Logger),
		onClosed: opts.OnClosed,
		router:   NewRouter(),
		links:    make(map[string]*Link),
		objects:  make(map[netbind.NetworkObjectID]*Object),
	}
	if s.protocol == nil {
		s.protocol = wire.DefaultProtocol{}
	}
	s.registerHandlers()
	return s
}

func (s *Session) registerHandlers() {
	s.router.Handle(pathSessionJoined, s.handleJoined)
	s.router.Handle(pathSessionLeft, s.handleLeft)

	if s.role == RoleClient {
		s.router.Handle(PathObjectAdd, s.handleObjectAdd)
		s.router.Handle(PathObjectRemove, s.handleObjectRemove)
		s.router.Handle(PathBindSlice, s.handleBindSlice)
		s.router.Handle(PathBindStream, s.handleBindStream)
		s.router.Handle(PathContextSequence, s.handleContextSequence)
	}

	s.router.HandleFallback(func(msg Inbound) {
		s.log.Warn("unhandled message", "role", s.role, "path", msg.Path, "link", msg.From.ID())
	})
}

// Attach connects the session to the binding core. It must be called
// before Run.
func (s *Session) Attach(b Binder, d *netbind.ContextData) {
	s.binder = b
	s.context = d
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) IsReady() bool {
	return s.ready.Load()
}

func (s *Session) IsSessionHost() bool {
	return s.role == RoleHost
}

func (s *Session) FindNetworkObjectByID(id netbind.NetworkObjectID) (netbind.NetworkObject, bool) {
	o, ok := s.objects[id]
	if !ok {
		return nil, false
	}
	return o, true
}

func (s *Session) ObjectCount() int {
	return len(s.objects)
}

func (s *Session) LinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// Run connects or listens and serves links until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer s.running.Store(false)

	if s.role == RoleHost {
		return s.runHost(ctx)
	}
	return s.runClient(ctx)
}

func (s *Session) runHost(ctx context.Context) error {
	if err := s.listener.Listen(); err != nil {
		return err
	}
	s.ready.Store(true)
	defer s.ready.Store(false)
	s.log.Info("session host listening", "addr", s.listener.Addr())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		s.listener.Close()
		s.closeLinks(transport.CloseHostShutdown, "host shutting down")
		return nil
	})

	g.Go(func() error {
		for {
			peer, err := s.listener.Accept(gctx)
			if gctx.Err() != nil {
				if peer != nil {
					peer.Close(transport.CloseHostShutdown, "")
				}
				return nil
			}
			if errors.Is(err, transport.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			if err != nil {
				s.log.Warn("failed accepting peer", "error", err)
				continue
			}

			link := newLink(peer, s.protocol)
			s.addLink(link)
			if gctx.Err() != nil {
				link.Close(transport.CloseHostShutdown, "")
			}
			s.log.Info("peer connected", "link", link.id, "remote", peer.RemoteAddr())

			g.Go(func() error {
				s.serveLink(link)
				return nil
			})
		}
	})

	return g.Wait()
}

func (s *Session) runClient(ctx context.Context) error {
	peer, err := s.dialer.Dial(ctx, s.addr)
	if err != nil {
		return err
	}
	link := newLink(peer, s.protocol)
	s.addLink(link)
	s.ready.Store(true)
	defer s.ready.Store(false)
	s.log.Info("session connected", "addr", s.addr, "link", link.id)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		link.Close(transport.CloseNormal, "client leaving")
		return nil
	})

	g.Go(func() error {
		err := s.serveLink(link)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrHostLost, err)
	})

	return g.Wait()
}

func (s *Session) serveLink(link *Link) error {
	s.enqueue(Inbound{From: link, Path: pathSessionJoined})

	err := link.readLoop(s.enqueue)

	s.removeLink(link.id)
	link.Close(transport.CloseNormal, "")
	s.enqueue(Inbound{From: link, Path: pathSessionLeft})
	s.log.Debug("link closed", "link", link.id, "error", err)
	return err
}

func (s *Session) enqueue(msg Inbound) {
	s.mu.Lock()
	s.inbox = append(s.inbox, msg)
	s.mu.Unlock()
}

func (s *Session) addLink(l *Link) {
	s.mu.Lock()
	s.links[l.id] = l
	s.mu.Unlock()
}

func (s *Session) removeLink(id string) {
	s.mu.Lock()
	delete(s.links, id)
	s.mu.Unlock()
}

func (s *Session) snapshotLinks() []*Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.links))
}

func (s *Session) closeLinks(code transport.CloseCode, reason string) {
	for _, l := range s.snapshotLinks() {
		l.Close(code, reason)
	}
}

func (s *Session) broadcast(path string, data []byte) {
	for _, l := range s.snapshotLinks() {
		s.send(l, path, data)
	}
}

func (s *Session) send(l *Link, path string, data []byte) {
	if err := l.Send(path, data); err != nil {
		s.log.Warn("send failed", "link", l.id, "path", path, "error", err)
		l.Close(transport.CloseProtocolError, "send failed")
	}
}

// OnTick dispatches everything the links received since the last tick. On
// the host it then publishes a changed context sequence.
func (s *Session) OnTick(time.Duration) {
	s.mu.Lock()
	inbox := s.inbox
	s.inbox = nil
	s.mu.Unlock()

	for _, msg := range inbox {
		s.router.Dispatch(msg)
	}

	if s.role == RoleHost {
		s.publishContextSequence()
	}
}

func (s *Session) currentSequence() netbind.ContextSequence {
	if s.context == nil {
		return netbind.InitialContextSequence
	}
	return s.context.Value()
}

func (s *Session) publishContextSequence() {
	seq := s.currentSequence()
	if seq == s.published {
		return
	}
	s.published = seq

	s.replicated = slices.DeleteFunc(s.replicated, func(r replicated) bool {
		return r.seq < seq
	})
	s.broadcast(PathContextSequence, wire.EncodeContextSequence(seq))
	s.log.Debug("published context sequence", "seq", seq)
}
