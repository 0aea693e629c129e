package world

import (
	"maps"

	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/wire"
	"github.com/google/uuid"
)

// Entity is a named bag of opaque component state.
type Entity struct {
	id                netbind.EntityID
	name              string
	state             netbind.EntityState
	activateByDefault bool
	inContext         bool
	destroyed         bool
	components        map[string][]byte
	binding           *Binding
}

func newEntity(id netbind.EntityID, rec wire.EntityRecord) *Entity {
	e := &Entity{
		id:                id,
		name:              rec.Name,
		state:             netbind.EntityConstructed,
		activateByDefault: true,
		components:        maps.Clone(rec.Components),
	}
	if e.components == nil {
		e.components = make(map[string][]byte)
	}
	if rec.Networked {
		e.binding = &Binding{}
	}
	return e
}

func (e *Entity) ID() netbind.EntityID        { return e.id }
func (e *Entity) Name() string                { return e.name }
func (e *Entity) State() netbind.EntityState  { return e.state }
func (e *Entity) ActivateByDefault() bool     { return e.activateByDefault }
func (e *Entity) SetActivateByDefault(a bool) { e.activateByDefault = a }
func (e *Entity) Destroyed() bool             { return e.destroyed }
func (e *Entity) Binding() *Binding           { return e.binding }

// NetBinding returns nil for entities that are not networked.
func (e *Entity) NetBinding() netbind.NetBinding {
	if e.binding == nil {
		return nil
	}
	return e.binding
}

func (e *Entity) Component(name string) ([]byte, bool) {
	data, ok := e.components[name]
	return data, ok
}

func (e *Entity) SetComponent(name string, data []byte) {
	e.components[name] = data
}

// Record returns the serializable form of e.
func (e *Entity) Record() wire.EntityRecord {
	return wire.EntityRecord{
		Name:       e.name,
		Networked:  e.binding != nil,
		Components: maps.Clone(e.components),
	}
}

// Binding links an entity to its network object.
type Binding struct {
	object   netbind.NetworkObjectID
	instance uuid.UUID
}

func (b *Binding) BindTo(obj netbind.NetworkObject) {
	b.object = obj.ID()
}

func (b *Binding) SetSliceInstanceID(id uuid.UUID) {
	b.instance = id
}

func (b *Binding) Object() netbind.NetworkObjectID { return b.object }
func (b *Binding) SliceInstanceID() uuid.UUID      { return b.instance }
