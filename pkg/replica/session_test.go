package replica

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/transport/memory"
	"github.com/google/uuid"
)

type sliceCall struct {
	bindTo netbind.NetworkObjectID
	ctx    netbind.SliceBindContext
}

type streamCall struct {
	payload []byte
	desired netbind.EntityID
	bindTo  netbind.NetworkObjectID
	seq     netbind.ContextSequence
}

type recordingBinder struct {
	slices  []sliceCall
	streams []streamCall
}

func (b *recordingBinder) SpawnEntityFromSlice(bindTo netbind.NetworkObjectID, ctx netbind.SliceBindContext) {
	b.slices = append(b.slices, sliceCall{bindTo, ctx})
}

func (b *recordingBinder) SpawnEntityFromStream(payload []byte, desired netbind.EntityID, bindTo netbind.NetworkObjectID, seq netbind.ContextSequence) {
	b.streams = append(b.streams, streamCall{payload, desired, bindTo, seq})
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func newContextData() *netbind.ContextData {
	return netbind.NewContextData(netbind.New(netbind.Options{}))
}

func runSession(ctx context.Context, s *Session) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return done
}

func TestRegisterLocalObjectBeforeRun(t *testing.T) {
	host := NewHost(memory.NewListener("host"), Options{})
	obj, err := host.NewObject()
	if err != nil {
		t.Fatal(err)
	}
	if err := host.RegisterLocalObject(1, obj); !errors.Is(err, netbind.ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}

	client := NewClient(memory.NewListener("host"), "host", Options{})
	if _, err := client.NewObject(); !errors.Is(err, ErrNotHost) {
		t.Errorf("expected ErrNotHost, got %v", err)
	}
	if err := client.RegisterLocalObject(1, obj); !errors.Is(err, ErrNotHost) {
		t.Errorf("expected ErrNotHost, got %v", err)
	}
}

func TestClientReplicatesHostState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := memory.NewListener("host")
	host := NewHost(listener, Options{})
	hostData := newContextData()
	host.Attach(nil, hostData)
	hostDone := runSession(ctx, host)
	eventually(t, host.IsReady)

	obj, err := host.NewObject()
	if err != nil {
		t.Fatal(err)
	}
	if err := host.RegisterLocalObject(10, obj); err != nil {
		t.Fatal(err)
	}
	if err := host.RegisterLocalObject(11, obj); !errors.Is(err, ErrObjectExists) {
		t.Errorf("expected ErrObjectExists, got %v", err)
	}

	bind := netbind.SliceBindContext{
		TemplateAssetID: uuid.New(),
		InstanceID:      uuid.New(),
		DesiredEntityID: 3,
	}
	if err := host.ReplicateSlice(obj.ID(), bind); err != nil {
		t.Fatal(err)
	}

	// The client joins late and must catch up from the snapshot.
	binder := &recordingBinder{}
	clientData := newContextData()
	client := NewClient(listener, "host", Options{})
	client.Attach(binder, clientData)
	clientDone := runSession(ctx, client)

	eventually(t, func() bool {
		host.OnTick(0)
		client.OnTick(0)
		return client.ObjectCount() == 1 && len(binder.slices) == 1
	})

	if _, ok := client.FindNetworkObjectByID(obj.ID()); !ok {
		t.Error("client does not resolve the announced object")
	}
	got := binder.slices[0]
	if got.bindTo != obj.ID() || got.ctx.InstanceID != bind.InstanceID || got.ctx.DesiredEntityID != 3 {
		t.Errorf("unexpected slice bind %+v", got)
	}
	if got.ctx.ContextSequence != netbind.InitialContextSequence {
		t.Errorf("expected current sequence to be filled in, got %d", got.ctx.ContextSequence)
	}

	hostData.Set(2)
	if err := host.ReplicateStream([]byte{1, 2}, 7, obj.ID(), 2); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		host.OnTick(0)
		client.OnTick(0)
		return clientData.Value() == 2 && len(binder.streams) == 1
	})
	if s := binder.streams[0]; s.desired != 7 || s.bindTo != obj.ID() || s.seq != 2 {
		t.Errorf("unexpected stream spawn %+v", s)
	}

	if err := host.RemoveObject(obj.ID()); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		host.OnTick(0)
		client.OnTick(0)
		return client.ObjectCount() == 0
	})

	cancel()
	if err := <-hostDone; err != nil {
		t.Errorf("host: %v", err)
	}
	if err := <-clientDone; err != nil {
		t.Errorf("client: %v", err)
	}
}

func TestClientNoticesHostShutdown(t *testing.T) {
	hostCtx, stopHost := context.WithCancel(context.Background())
	defer stopHost()
	clientCtx, stopClient := context.WithCancel(context.Background())
	defer stopClient()

	listener := memory.NewListener("host")
	host := NewHost(listener, Options{})
	hostDone := runSession(hostCtx, host)
	eventually(t, host.IsReady)

	closed := false
	client := NewClient(listener, "host", Options{OnClosed: func() { closed = true }})
	clientDone := runSession(clientCtx, client)
	eventually(t, func() bool { return host.LinkCount() == 1 })

	stopHost()
	if err := <-hostDone; err != nil {
		t.Errorf("host: %v", err)
	}
	if err := <-clientDone; !errors.Is(err, ErrHostLost) {
		t.Errorf("expected ErrHostLost, got %v", err)
	}

	eventually(t, func() bool {
		client.OnTick(0)
		return closed
	})
	if client.IsReady() {
		t.Error("client still ready after losing host")
	}
}
