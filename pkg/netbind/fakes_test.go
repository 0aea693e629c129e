package netbind_test

import (
	"errors"

	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/google/uuid"
)

type fakeObject netbind.NetworkObjectID

func (o fakeObject) ID() netbind.NetworkObjectID { return netbind.NetworkObjectID(o) }

type fakeBinding struct {
	boundTo  netbind.NetworkObjectID
	instance uuid.UUID
	binds    int
}

func (b *fakeBinding) BindTo(obj netbind.NetworkObject) {
	b.boundTo = obj.ID()
	b.binds++
}

func (b *fakeBinding) SetSliceInstanceID(id uuid.UUID) {
	b.instance = id
}

type fakeEntity struct {
	id                netbind.EntityID
	state             netbind.EntityState
	activateByDefault bool
	binding           *fakeBinding
}

func newNetEntity(id netbind.EntityID) *fakeEntity {
	return &fakeEntity{id: id, activateByDefault: true, binding: &fakeBinding{}}
}

func newPlainEntity(id netbind.EntityID) *fakeEntity {
	return &fakeEntity{id: id, activateByDefault: true}
}

func (e *fakeEntity) ID() netbind.EntityID        { return e.id }
func (e *fakeEntity) State() netbind.EntityState  { return e.state }
func (e *fakeEntity) SetActivateByDefault(v bool) { e.activateByDefault = v }

func (e *fakeEntity) NetBinding() netbind.NetBinding {
	if e.binding == nil {
		return nil
	}
	return e.binding
}

type fakeRuntime struct {
	entities    map[netbind.EntityID]*fakeEntity
	added       []netbind.EntityID
	activated   []netbind.EntityID
	deactivated []netbind.EntityID
	destroyed   []netbind.EntityID
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{entities: make(map[netbind.EntityID]*fakeEntity)}
}

func (r *fakeRuntime) AddEntity(e netbind.Entity) {
	r.entities[e.ID()] = e.(*fakeEntity)
	r.added = append(r.added, e.ID())
}

func (r *fakeRuntime) InitEntity(e netbind.Entity) {
	e.(*fakeEntity).state = netbind.EntityInitialized
}

func (r *fakeRuntime) ActivateEntity(e netbind.Entity) {
	e.(*fakeEntity).state = netbind.EntityActive
	r.activated = append(r.activated, e.ID())
}

func (r *fakeRuntime) DeactivateEntity(e netbind.Entity) {
	e.(*fakeEntity).state = netbind.EntityInactive
	r.deactivated = append(r.deactivated, e.ID())
}

func (r *fakeRuntime) DestroyEntity(e netbind.Entity) {
	delete(r.entities, e.ID())
	r.destroyed = append(r.destroyed, e.ID())
}

func (r *fakeRuntime) FindEntityByID(id netbind.EntityID) (netbind.Entity, bool) {
	e, ok := r.entities[id]
	if !ok {
		return nil, false
	}
	return e, true
}

type loaderRequest struct {
	template uuid.UUID
	ticket   netbind.InstantiationTicket
	remap    netbind.IdentityRemapFunc
	cb       netbind.InstantiationCallbacks
}

// fakeLoader records instantiation requests. Callbacks are delivered by the
// test, or inside the request when onRequest is set.
type fakeLoader struct {
	ready     bool
	requests  []loaderRequest
	cancelled []netbind.InstantiationTicket
	onRequest func(req loaderRequest)
	streamErr error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{ready: true}
}

func (l *fakeLoader) IsReady() bool { return l.ready }

func (l *fakeLoader) RequestTemplateInstantiation(template uuid.UUID, remap netbind.IdentityRemapFunc, cb netbind.InstantiationCallbacks) (netbind.InstantiationTicket, error) {
	req := loaderRequest{
		template: template,
		ticket:   netbind.InstantiationTicket(len(l.requests) + 1),
		remap:    remap,
		cb:       cb,
	}
	l.requests = append(l.requests, req)
	if l.onRequest != nil {
		l.onRequest(req)
	}
	return req.ticket, nil
}

func (l *fakeLoader) CancelInstantiation(ticket netbind.InstantiationTicket) {
	l.cancelled = append(l.cancelled, ticket)
}

func (l *fakeLoader) LoadEntityFromStream(payload []byte, id netbind.EntityID) (netbind.Entity, error) {
	if l.streamErr != nil {
		return nil, l.streamErr
	}
	if len(payload) == 0 {
		return nil, errors.New("empty payload")
	}
	return newNetEntity(id), nil
}

// deliver fires PreInstantiate and OnInstantiated for req.
func deliver(req loaderRequest, entities ...netbind.TemplateEntity) {
	req.cb.PreInstantiate(req.ticket, entities)
	req.cb.OnInstantiated(req.ticket, entities)
}

type fakeNetwork struct {
	host     bool
	notReady bool
	objects  map[netbind.NetworkObjectID]fakeObject
	local    map[netbind.NetworkObjectID]netbind.EntityID
}

func newFakeNetwork(ids ...netbind.NetworkObjectID) *fakeNetwork {
	n := &fakeNetwork{
		objects: make(map[netbind.NetworkObjectID]fakeObject),
		local:   make(map[netbind.NetworkObjectID]netbind.EntityID),
	}
	for _, id := range ids {
		n.objects[id] = fakeObject(id)
	}
	return n
}

func (n *fakeNetwork) IsReady() bool       { return !n.notReady }
func (n *fakeNetwork) IsSessionHost() bool { return n.host }

func (n *fakeNetwork) FindNetworkObjectByID(id netbind.NetworkObjectID) (netbind.NetworkObject, bool) {
	obj, ok := n.objects[id]
	if !ok {
		return nil, false
	}
	return obj, true
}

func (n *fakeNetwork) RegisterLocalObject(entity netbind.EntityID, obj netbind.NetworkObject) error {
	if n.notReady {
		return netbind.ErrNotReady
	}
	n.local[obj.ID()] = entity
	return nil
}
