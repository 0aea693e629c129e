package world

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/QYUbit/replibind/pkg/axlog"
	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/wire"
	"github.com/google/uuid"
)

var ErrUnknownTemplate = errors.New("unknown template")

// TemplateEntity is one entity of a template, addressed by its
// template-local id.
type TemplateEntity struct {
	LocalID netbind.EntityID
	Record  wire.EntityRecord
}

// Template is an asset that instantiates a group of entities together.
type Template struct {
	ID       uuid.UUID
	Entities []TemplateEntity
}

// Delivery selects when instantiation callbacks fire.
type Delivery int

const (
	// DeliverImmediately runs callbacks inside RequestTemplateInstantiation.
	DeliverImmediately Delivery = iota
	// DeliverOnTick runs callbacks on the next OnTick.
	DeliverOnTick
)

type TemplatesOptions struct {
	Delivery Delivery
	Logger   axlog.Logger
}

type instantiation struct {
	ticket   netbind.InstantiationTicket
	template Template
	remap    netbind.IdentityRemapFunc
	cb       netbind.InstantiationCallbacks
}

// Templates is a netbind.AssetLoader backed by in-memory templates and a
// World.
type Templates struct {
	world      *World
	templates  map[uuid.UUID]Template
	delivery   Delivery
	ready      bool
	lastTicket netbind.InstantiationTicket
	pending    []*instantiation
	log        axlog.Logger
}

func NewTemplates(w *World, opts TemplatesOptions) *Templates {
	return &Templates{
		world:     w,
		templates: make(map[uuid.UUID]Template),
		delivery:  opts.Delivery,
		ready:     true,
		log:       axlog.OrNop(opts.Logger),
	}
}

func (t *Templates) Register(tpl Template) {
	t.templates[tpl.ID] = tpl
}

// SetReady toggles whether the loader accepts work. Requests queued for
// tick delivery are held while it is not ready.
func (t *Templates) SetReady(ready bool) {
	t.ready = ready
}

func (t *Templates) IsReady() bool {
	return t.ready
}

func (t *Templates) PendingCount() int {
	return len(t.pending)
}

func (t *Templates) RequestTemplateInstantiation(id uuid.UUID, remap netbind.IdentityRemapFunc, cb netbind.InstantiationCallbacks) (netbind.InstantiationTicket, error) {
	tpl, ok := t.templates[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}

	t.lastTicket++
	inst := &instantiation{ticket: t.lastTicket, template: tpl, remap: remap, cb: cb}

	if t.delivery == DeliverImmediately {
		t.instantiate(inst)
	} else {
		t.pending = append(t.pending, inst)
	}
	return inst.ticket, nil
}

func (t *Templates) CancelInstantiation(ticket netbind.InstantiationTicket) {
	t.pending = slices.DeleteFunc(t.pending, func(inst *instantiation) bool {
		return inst.ticket == ticket
	})
}

// OnTick delivers queued instantiations.
func (t *Templates) OnTick(time.Duration) {
	if !t.ready || len(t.pending) == 0 {
		return
	}
	pending := t.pending
	t.pending = nil
	for _, inst := range pending {
		t.instantiate(inst)
	}
}

func (t *Templates) instantiate(inst *instantiation) {
	produced := make([]netbind.TemplateEntity, 0, len(inst.template.Entities))

	for _, te := range inst.template.Entities {
		id := te.LocalID
		if inst.remap != nil {
			id = inst.remap(te.LocalID)
		}
		e, err := t.world.spawn(id, te.Record)
		if err != nil {
			t.log.Warn("template instantiation failed",
				"template", inst.template.ID, "local", te.LocalID, "error", err)
			for _, p := range produced {
				t.world.DestroyEntity(p.Entity)
			}
			inst.cb.OnInstantiationFailed(inst.ticket)
			return
		}
		produced = append(produced, netbind.TemplateEntity{LocalID: te.LocalID, Entity: e})
	}

	inst.cb.PreInstantiate(inst.ticket, produced)
	inst.cb.OnInstantiated(inst.ticket, produced)
}

// LoadEntityFromStream decodes an entity record and spawns it as id.
func (t *Templates) LoadEntityFromStream(payload []byte, id netbind.EntityID) (netbind.Entity, error) {
	rec, err := wire.DecodeEntity(payload)
	if err != nil {
		return nil, err
	}
	e, err := t.world.spawn(id, rec)
	if err != nil {
		return nil, err
	}
	return e, nil
}
