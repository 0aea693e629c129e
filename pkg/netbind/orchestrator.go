package netbind

import (
	"slices"
	"time"

	"github.com/QYUbit/replibind/pkg/axlog"
	"github.com/google/uuid"
)

// Options injects the collaborators of an Orchestrator.
type Options struct {
	Entities EntityRuntime
	// Network may be nil until OnNetworkSessionActivated is called.
	Network NetworkLayer
	Assets  AssetLoader
	Logger  axlog.Logger

	// AllocateEntityID is handed to template instantiation as the identity
	// remap. Defaults to a sequential allocator.
	AllocateEntityID func(local EntityID) EntityID

	// Debug turns violated internal invariants into panics instead of
	// error logs.
	Debug bool
}

type bindQueue struct {
	handlers map[uuid.UUID]*SliceInstantiationHandler
	order    []uuid.UUID
}

func newBindQueue() *bindQueue {
	return &bindQueue{handlers: make(map[uuid.UUID]*SliceInstantiationHandler)}
}

func (q *bindQueue) remove(id uuid.UUID) {
	delete(q.handlers, id)
	if i := slices.Index(q.order, id); i >= 0 {
		q.order = slices.Delete(q.order, i, i+1)
	}
}

type spawnQueue struct {
	requests []*SpawnRequest
}

func newSpawnQueue() *spawnQueue {
	return &spawnQueue{}
}

type replicaMasterRequest struct {
	entity EntityID
	object NetworkObject
}

// Orchestrator binds replicated network objects to local entities. It owns
// every per-context queue and is driven by OnTick.
type Orchestrator struct {
	entities   EntityRuntime
	network    NetworkLayer
	assets     AssetLoader
	log        axlog.Logger
	allocateID func(local EntityID) EntityID
	debug      bool

	now       time.Duration
	sequencer ContextSequencer

	bindQueues     epochMap[*bindQueue]
	spawnQueues    epochMap[*spawnQueue]
	replicaMasters []replicaMasterRequest
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		entities:   opts.Entities,
		network:    opts.Network,
		assets:     opts.Assets,
		log:        axlog.OrNop(opts.Logger),
		allocateID: opts.AllocateEntityID,
		debug:      opts.Debug,
		sequencer:  newContextSequencer(),
	}
	if o.allocateID == nil {
		o.allocateID = sequentialIDs(1 << 32)
	}
	o.bindQueues.getOrCreate(o.sequencer.current, newBindQueue)
	return o
}

func sequentialIDs(start EntityID) func(EntityID) EntityID {
	next := start
	return func(EntityID) EntityID {
		next++
		return next
	}
}

// Now returns the orchestrator clock: the sum of all tick deltas.
func (o *Orchestrator) Now() time.Duration {
	return o.now
}

func (o *Orchestrator) GetCurrentContextSequence() ContextSequence {
	return o.sequencer.current
}

// ShouldBindToNetwork reports whether a network session is attached.
func (o *Orchestrator) ShouldBindToNetwork() bool {
	return o.network != nil
}

// Handler returns the slice handler for an instance queued under seq.
func (o *Orchestrator) Handler(seq ContextSequence, instanceID uuid.UUID) (*SliceInstantiationHandler, bool) {
	q, ok := o.bindQueues.get(seq)
	if !ok {
		return nil, false
	}
	h, ok := q.handlers[instanceID]
	return h, ok
}

func (o *Orchestrator) PendingSpawnCount(seq ContextSequence) int {
	q, ok := o.spawnQueues.get(seq)
	if !ok {
		return 0
	}
	return len(q.requests)
}

// SpawnEntityFromSlice queues a bind of bindTo to the entity the slice
// instance produces for ctx.DesiredEntityID. Multiple calls for one instance
// share a single instantiation.
func (o *Orchestrator) SpawnEntityFromSlice(bindTo NetworkObjectID, ctx SliceBindContext) {
	if ctx.ContextSequence < o.sequencer.current {
		o.log.Debug("dropping slice bind from stale context", "context", ctx.String(), "current", o.sequencer.current)
		return
	}

	q := o.bindQueues.getOrCreate(ctx.ContextSequence, newBindQueue)
	h, ok := q.handlers[ctx.InstanceID]
	if !ok {
		h = newSliceHandler(o, ctx.TemplateAssetID, ctx.InstanceID)
		q.handlers[ctx.InstanceID] = h
		q.order = append(q.order, ctx.InstanceID)
	} else if h.templateAssetID != ctx.TemplateAssetID {
		o.log.Warn("slice instance requested with a different template",
			"instance", ctx.InstanceID, "template", h.templateAssetID, "requested", ctx.TemplateAssetID)
		return
	}
	h.addBindRequest(ctx.DesiredEntityID, bindTo, o.now)
}

// SpawnEntityFromStream queues creation of an entity from payload. The queue
// takes ownership of payload.
func (o *Orchestrator) SpawnEntityFromStream(payload []byte, desired EntityID, bindTo NetworkObjectID, seq ContextSequence) {
	if seq < o.sequencer.current {
		o.log.Debug("dropping stream spawn from stale context", "desired", desired, "seq", seq, "current", o.sequencer.current)
		return
	}
	q := o.spawnQueues.getOrCreate(seq, newSpawnQueue)
	q.requests = append(q.requests, &SpawnRequest{
		Payload:         payload,
		DesiredEntityID: desired,
		BoundTo:         bindTo,
		RequestTime:     o.now,
	})
}

// UnbindGameEntity deactivates an entity cached by the slice instance so it
// can be bound again. Entities this package does not track are destroyed.
func (o *Orchestrator) UnbindGameEntity(id EntityID, instanceID uuid.UUID) {
	for _, q := range o.bindQueues.all() {
		h, ok := q.handlers[instanceID]
		if !ok {
			continue
		}
		if h.deactivate(id) {
			return
		}
	}
	for _, q := range o.spawnQueues.all() {
		for _, r := range q.requests {
			if r.entity != nil && r.entity.ID() == id {
				return
			}
		}
	}

	if o.entities == nil {
		return
	}
	if e, ok := o.entities.FindEntityByID(id); ok {
		o.log.Debug("destroying unknown entity on unbind", "entity", id, "instance", instanceID)
		o.entities.DestroyEntity(e)
	}
}

// BindAndActivate attaches entity to the network object bindTo and activates
// it. It returns false, leaving the entity untouched, when the object cannot
// be resolved yet.
func (o *Orchestrator) BindAndActivate(entity Entity, bindTo NetworkObjectID, addToEntityContext bool, instanceID uuid.UUID) bool {
	if o.network == nil || entity == nil {
		return false
	}
	obj, ok := o.network.FindNetworkObjectByID(bindTo)
	if !ok {
		return false
	}

	if addToEntityContext {
		o.entities.AddEntity(entity)
	}
	if entity.State() == EntityConstructed {
		o.entities.InitEntity(entity)
	}
	if nb := entity.NetBinding(); nb != nil {
		nb.BindTo(obj)
		nb.SetSliceInstanceID(instanceID)
	}
	o.entities.ActivateEntity(entity)

	o.log.Debug("entity bound", "entity", entity.ID(), "object", bindTo, "instance", instanceID)
	return true
}

// OnTick advances the clock, picks up the replicated context sequence and
// processes every queue.
func (o *Orchestrator) OnTick(dt time.Duration) {
	o.now += dt
	o.updateContextSequence()
	o.processBindRequests()
	o.processSpawnRequests()
}

func (o *Orchestrator) updateContextSequence() {
	prev, changed := o.sequencer.refresh()
	if !changed {
		return
	}
	o.log.Info("context sequence changed", "from", prev, "to", o.sequencer.current)
	o.bindQueues.getOrCreate(o.sequencer.current, newBindQueue)
}

func (o *Orchestrator) processBindRequests() {
	current := o.sequencer.current

	if n := o.bindQueues.pruneBelow(current, o.purgeBindQueue); n > 0 {
		o.log.Debug("purged stale bind queues", "count", n, "current", current)
	}

	q, ok := o.bindQueues.get(current)
	if !o.assert(ok, "no bind queue for current context", "current", current) {
		q = o.bindQueues.getOrCreate(current, newBindQueue)
	}

	for _, id := range slices.Clone(q.order) {
		h := q.handlers[id]
		if h.state == SliceNewRequest {
			h.instantiateEntities()
		}
		if h.process(o.now) {
			q.remove(id)
			h.release()
		}
	}

	o.replayReplicaMasters()
}

func (o *Orchestrator) purgeBindQueue(seq ContextSequence, q *bindQueue) {
	for _, id := range q.order {
		h := q.handlers[id]
		o.log.Debug("purging slice handler from stale context",
			"seq", seq, "instance", id, "state", h.state, "pending", len(h.pendingBinds))
		h.release()
	}
}

// ResetContext starts a new context epoch. Only the session host may do
// this; clients follow the replicated value.
func (o *Orchestrator) ResetContext() ContextSequence {
	if o.network != nil && !o.network.IsSessionHost() {
		o.log.Warn("context reset ignored on non-host", "current", o.sequencer.current)
		return o.sequencer.current
	}
	seq := o.sequencer.advance()
	o.bindQueues.getOrCreate(seq, newBindQueue)
	o.log.Info("context reset", "seq", seq)
	return seq
}

// OnContextDataActivated attaches the replicated context data. The host
// publishes its sequence; clients adopt the replicated one.
func (o *Orchestrator) OnContextDataActivated(d *ContextData) {
	o.sequencer.data = d
	if o.network != nil && o.network.IsSessionHost() {
		d.Set(o.sequencer.current)
		return
	}
	o.updateContextSequence()
}

func (o *Orchestrator) OnContextDataDeactivated(d *ContextData) {
	if o.sequencer.data == d {
		o.sequencer.data = nil
	}
}

func (o *Orchestrator) OnNetworkSessionActivated(network NetworkLayer) {
	o.network = network
}

// OnNetworkSessionDeactivated cancels all outstanding work and returns the
// sequencer to its initial value.
func (o *Orchestrator) OnNetworkSessionDeactivated() {
	o.bindQueues.clear(o.purgeBindQueue)
	o.spawnQueues.clear(o.purgeSpawnQueue)
	o.replicaMasters = nil
	o.network = nil
	o.sequencer.reset()
	o.bindQueues.getOrCreate(o.sequencer.current, newBindQueue)
}

func (o *Orchestrator) assert(cond bool, msg string, keyValues ...any) bool {
	if cond {
		return true
	}
	if o.debug {
		panic("netbind: " + msg)
	}
	o.log.Error(msg, keyValues...)
	return false
}
