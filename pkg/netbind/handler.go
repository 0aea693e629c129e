package netbind

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type SliceState int

const (
	SliceNewRequest SliceState = iota
	SliceSpawning
	SliceSpawned
	SliceFailed
)

func (s SliceState) String() string {
	switch s {
	case SliceNewRequest:
		return "new-request"
	case SliceSpawning:
		return "spawning"
	case SliceSpawned:
		return "spawned"
	case SliceFailed:
		return "failed"
	}
	return "unknown"
}

// SliceInstantiationHandler owns the instantiation of one slice instance and
// the bind requests that target its entities.
type SliceInstantiationHandler struct {
	o *Orchestrator

	templateAssetID uuid.UUID
	instanceID      uuid.UUID
	state           SliceState

	ticket    InstantiationTicket
	hasTicket bool
	spawnedAt time.Duration
	// unboundAt is when an entity of this handler was last unbound. The
	// late-bind window restarts from it.
	unboundAt time.Duration
	purged    bool

	boundEntities []Entity
	pendingBinds  map[EntityID]*BindRequest
	pendingOrder  []EntityID
	identityRemap map[EntityID]EntityID
	// bound holds template-local identities already bound and activated.
	bound map[EntityID]struct{}
}

func newSliceHandler(o *Orchestrator, templateAssetID, instanceID uuid.UUID) *SliceInstantiationHandler {
	return &SliceInstantiationHandler{
		o:               o,
		templateAssetID: templateAssetID,
		instanceID:      instanceID,
		state:           SliceNewRequest,
		pendingBinds:    make(map[EntityID]*BindRequest),
		bound:           make(map[EntityID]struct{}),
	}
}

func (h *SliceInstantiationHandler) TemplateAssetID() uuid.UUID { return h.templateAssetID }
func (h *SliceInstantiationHandler) InstanceID() uuid.UUID      { return h.instanceID }
func (h *SliceInstantiationHandler) State() SliceState          { return h.state }
func (h *SliceInstantiationHandler) PendingBindCount() int      { return len(h.pendingBinds) }

// PendingBind returns a copy of the pending request for a template-local id.
func (h *SliceInstantiationHandler) PendingBind(desired EntityID) (BindRequest, bool) {
	req, ok := h.pendingBinds[desired]
	if !ok {
		return BindRequest{}, false
	}
	return *req, true
}

func (h *SliceInstantiationHandler) BoundEntities() []Entity {
	return slices.Clone(h.boundEntities)
}

// ActualEntityFor looks up the runtime identity produced for a
// template-local identity.
func (h *SliceInstantiationHandler) ActualEntityFor(local EntityID) (EntityID, bool) {
	id, ok := h.identityRemap[local]
	return id, ok
}

func (h *SliceInstantiationHandler) addBindRequest(desired EntityID, bindTo NetworkObjectID, now time.Duration) {
	if _, done := h.bound[desired]; done {
		h.o.log.Debug("bind for already bound entity ignored",
			"instance", h.instanceID, "desired", desired, "object", bindTo)
		return
	}

	req, ok := h.pendingBinds[desired]
	if !ok {
		req = &BindRequest{DesiredEntityID: desired, State: FirstBindInSlice}
		h.insertPending(req)
	}
	if h.state == SliceSpawned || req.State == PlaceholderBind {
		req.State = LateBind
	}
	req.BoundTo = bindTo
	req.RequestTime = now

	if h.state == SliceSpawned && req.entity == nil {
		h.UseCacheFor(req, desired)
	}
}

func (h *SliceInstantiationHandler) insertPending(req *BindRequest) {
	h.pendingBinds[req.DesiredEntityID] = req
	h.pendingOrder = append(h.pendingOrder, req.DesiredEntityID)
}

func (h *SliceInstantiationHandler) removePending(desired EntityID) {
	delete(h.pendingBinds, desired)
	if i := slices.Index(h.pendingOrder, desired); i >= 0 {
		h.pendingOrder = slices.Delete(h.pendingOrder, i, i+1)
	}
}

// UseCacheFor serves a request that arrived after the instance spawned from
// the identities recorded at instantiation. It reports whether the request
// now has an entity.
func (h *SliceInstantiationHandler) UseCacheFor(req *BindRequest, desired EntityID) bool {
	actual, ok := h.identityRemap[desired]
	if ok {
		for _, e := range h.boundEntities {
			if e.ID() == actual {
				req.ActualEntityID = actual
				req.entity = e
				return true
			}
		}
	}
	h.o.log.Warn("late bind has no cached entity",
		"instance", h.instanceID, "desired", desired, "remapped", ok)
	return false
}

// instantiateEntities dispatches the template instantiation once the asset
// subsystem is ready. Until then the handler stays in SliceNewRequest.
func (h *SliceInstantiationHandler) instantiateEntities() {
	if h.o.assets == nil || !h.o.assets.IsReady() {
		return
	}

	// Callbacks may fire before RequestTemplateInstantiation returns.
	h.state = SliceSpawning
	ticket, err := h.o.assets.RequestTemplateInstantiation(h.templateAssetID, h.remapIdentity, h)
	if err != nil {
		h.o.log.Warn("slice instantiation request failed",
			"template", h.templateAssetID, "instance", h.instanceID, "error", err)
		if h.state == SliceSpawning {
			h.fail()
		}
		return
	}
	h.ticket = ticket
	h.hasTicket = true
}

func (h *SliceInstantiationHandler) remapIdentity(local EntityID) EntityID {
	return h.o.allocateID(local)
}

// PreInstantiate records the runtime identities of requested entities and
// synthesizes placeholder requests for networked entities nobody asked for.
func (h *SliceInstantiationHandler) PreInstantiate(ticket InstantiationTicket, entities []TemplateEntity) {
	if h.purged || h.state != SliceSpawning {
		return
	}
	for _, te := range entities {
		te.Entity.SetActivateByDefault(false)
		h.attach(te)
	}
}

// attach links a produced entity to its pending request, creating a
// placeholder when the entity is networked. It reports whether the entity
// is worth keeping.
func (h *SliceInstantiationHandler) attach(te TemplateEntity) bool {
	if req, ok := h.pendingBinds[te.LocalID]; ok {
		req.ActualEntityID = te.Entity.ID()
		req.entity = te.Entity
		return true
	}
	if te.Entity.NetBinding() == nil {
		return false
	}
	h.insertPending(&BindRequest{
		DesiredEntityID: te.LocalID,
		ActualEntityID:  te.Entity.ID(),
		RequestTime:     h.o.now,
		State:           PlaceholderBind,
		entity:          te.Entity,
	})
	return true
}

// OnInstantiated caches the produced entities. Entities that are neither
// requested nor networked are template scaffolding and get destroyed.
func (h *SliceInstantiationHandler) OnInstantiated(ticket InstantiationTicket, entities []TemplateEntity) {
	if h.purged || h.state != SliceSpawning {
		h.o.log.Debug("discarding instantiation for inactive slice handler",
			"instance", h.instanceID, "state", h.state, "entities", len(entities))
		for _, te := range entities {
			h.o.entities.DestroyEntity(te.Entity)
		}
		return
	}

	h.identityRemap = make(map[EntityID]EntityID, len(entities))
	for _, te := range entities {
		h.identityRemap[te.LocalID] = te.Entity.ID()
		te.Entity.SetActivateByDefault(false)
		if !h.attach(te) {
			h.o.entities.DestroyEntity(te.Entity)
			continue
		}
		h.boundEntities = append(h.boundEntities, te.Entity)
	}

	h.state = SliceSpawned
	h.spawnedAt = h.o.now
	h.o.log.Debug("slice instance spawned",
		"template", h.templateAssetID, "instance", h.instanceID, "entities", len(h.boundEntities))
}

func (h *SliceInstantiationHandler) OnInstantiationFailed(ticket InstantiationTicket) {
	if h.purged || h.state != SliceSpawning {
		return
	}
	h.o.log.Warn("slice instantiation failed",
		"template", h.templateAssetID, "instance", h.instanceID, "pending", len(h.pendingBinds))
	h.fail()
}

func (h *SliceInstantiationHandler) fail() {
	for _, req := range h.pendingBinds {
		if req.entity != nil && !slices.Contains(h.boundEntities, req.entity) {
			h.o.entities.DestroyEntity(req.entity)
		}
	}
	clear(h.pendingBinds)
	h.pendingOrder = nil
	for _, e := range h.boundEntities {
		h.o.entities.DestroyEntity(e)
	}
	h.boundEntities = nil
	h.state = SliceFailed
}

// process binds resolved requests, drops expired ones and reports whether
// the handler has nothing left to do.
func (h *SliceInstantiationHandler) process(now time.Duration) bool {
	for _, desired := range slices.Clone(h.pendingOrder) {
		req, ok := h.pendingBinds[desired]
		if !ok {
			continue
		}

		// Entities reported by PreInstantiate are not bound before
		// OnInstantiated has delivered the whole instance.
		if h.state == SliceSpawned && req.resolved() && h.o.BindAndActivate(req.entity, req.BoundTo, false, h.instanceID) {
			h.bound[desired] = struct{}{}
			h.removePending(desired)
			continue
		}

		if now-req.RequestTime < BindTimeout {
			continue
		}
		if req.State == PlaceholderBind {
			h.o.log.Debug("placeholder bind expired", "instance", h.instanceID, "desired", desired)
		} else {
			h.o.log.Warn("bind request timed out",
				"instance", h.instanceID, "desired", desired, "object", req.BoundTo, "state", req.State)
		}
		if h.state == SliceSpawned && req.entity != nil && req.entity.State() != EntityActive {
			h.discard(req.entity)
		}
		h.removePending(desired)
	}

	if len(h.pendingBinds) > 0 || h.hasActiveEntities() {
		return false
	}
	switch h.state {
	case SliceFailed:
		return true
	case SliceSpawned:
		return now-max(h.spawnedAt, h.unboundAt) >= BindTimeout
	}
	return false
}

func (h *SliceInstantiationHandler) hasActiveEntities() bool {
	for _, e := range h.boundEntities {
		if e.State() == EntityActive {
			return true
		}
	}
	return false
}

func (h *SliceInstantiationHandler) discard(e Entity) {
	if i := slices.Index(h.boundEntities, e); i >= 0 {
		h.boundEntities = slices.Delete(h.boundEntities, i, i+1)
	}
	h.o.entities.DestroyEntity(e)
}

// deactivate unbinds a cached entity so a later matching bind can
// reactivate it. It reports whether the entity belongs to this handler.
func (h *SliceInstantiationHandler) deactivate(id EntityID) bool {
	i := slices.IndexFunc(h.boundEntities, func(e Entity) bool { return e.ID() == id })
	if i < 0 {
		return false
	}
	e := h.boundEntities[i]
	if e.State() == EntityActive {
		h.o.entities.DeactivateEntity(e)
	}
	h.unboundAt = h.o.now
	for local, actual := range h.identityRemap {
		if actual == id {
			delete(h.bound, local)
		}
	}
	return true
}

// release drops every cached entity that is not active and cancels an
// outstanding instantiation. Active entities belong to the runtime.
func (h *SliceInstantiationHandler) release() {
	h.purged = true
	if h.state == SliceSpawning && h.hasTicket {
		h.o.assets.CancelInstantiation(h.ticket)
	}
	for _, req := range h.pendingBinds {
		if req.entity != nil && req.entity.State() != EntityActive && !slices.Contains(h.boundEntities, req.entity) {
			h.o.entities.DestroyEntity(req.entity)
		}
	}
	clear(h.pendingBinds)
	h.pendingOrder = nil
	for _, e := range h.boundEntities {
		if e.State() != EntityActive {
			h.o.entities.DestroyEntity(e)
		}
	}
	h.boundEntities = nil
}
