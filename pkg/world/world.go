// Package world is an in-memory entity runtime and template store for the
// binding core.
package world

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/QYUbit/replibind/pkg/axlog"
	"github.com/QYUbit/replibind/pkg/netbind"
	"github.com/QYUbit/replibind/pkg/wire"
)

var (
	ErrEntityExists  = errors.New("entity id already in use")
	ErrInvalidEntity = errors.New("invalid entity id")
)

// World owns every entity it creates. Entities become part of the game
// entity context through AddEntity.
type World struct {
	entities map[netbind.EntityID]*Entity
	nextID   netbind.EntityID
	log      axlog.Logger
}

func NewWorld(logger axlog.Logger) *World {
	return &World{
		entities: make(map[netbind.EntityID]*Entity),
		log:      axlog.OrNop(logger),
	}
}

// AllocateID returns an unused entity id. Its signature matches
// netbind.Options.AllocateEntityID.
func (w *World) AllocateID(netbind.EntityID) netbind.EntityID {
	for {
		w.nextID++
		if _, ok := w.entities[w.nextID]; !ok {
			return w.nextID
		}
	}
}

// CreateEntity constructs an entity outside the game entity context.
func (w *World) CreateEntity(name string, networked bool) *Entity {
	e := newEntity(w.AllocateID(0), wire.EntityRecord{Name: name, Networked: networked})
	w.entities[e.id] = e
	return e
}

func (w *World) spawn(id netbind.EntityID, rec wire.EntityRecord) (*Entity, error) {
	if !id.IsValid() {
		return nil, ErrInvalidEntity
	}
	if _, ok := w.entities[id]; ok {
		return nil, fmt.Errorf("%w: %d", ErrEntityExists, id)
	}
	e := newEntity(id, rec)
	w.entities[id] = e
	return e, nil
}

func (w *World) lookup(e netbind.Entity) (*Entity, bool) {
	if e == nil {
		return nil, false
	}
	ent, ok := w.entities[e.ID()]
	if !ok {
		w.log.Warn("entity not owned by this world", "entity", e.ID())
	}
	return ent, ok
}

func (w *World) AddEntity(e netbind.Entity) {
	if ent, ok := w.lookup(e); ok {
		ent.inContext = true
	}
}

func (w *World) InitEntity(e netbind.Entity) {
	ent, ok := w.lookup(e)
	if !ok || ent.state != netbind.EntityConstructed {
		return
	}
	ent.state = netbind.EntityInitialized
}

func (w *World) ActivateEntity(e netbind.Entity) {
	ent, ok := w.lookup(e)
	if !ok {
		return
	}
	if ent.state == netbind.EntityConstructed {
		ent.state = netbind.EntityInitialized
	}
	ent.state = netbind.EntityActive
}

func (w *World) DeactivateEntity(e netbind.Entity) {
	ent, ok := w.lookup(e)
	if !ok || ent.state != netbind.EntityActive {
		return
	}
	ent.state = netbind.EntityInactive
}

func (w *World) DestroyEntity(e netbind.Entity) {
	ent, ok := w.lookup(e)
	if !ok {
		return
	}
	delete(w.entities, ent.id)
	ent.destroyed = true
	ent.inContext = false
	w.log.Debug("entity destroyed", "entity", ent.id, "name", ent.name)
}

func (w *World) FindEntityByID(id netbind.EntityID) (netbind.Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// Entity returns the concrete entity for id.
func (w *World) Entity(id netbind.EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Len counts live entities, in the context or not.
func (w *World) Len() int {
	return len(w.entities)
}

// Context returns the entities added to the game entity context, ordered
// by id.
func (w *World) Context() []*Entity {
	var out []*Entity
	for _, id := range slices.Sorted(maps.Keys(w.entities)) {
		if e := w.entities[id]; e.inContext {
			out = append(out, e)
		}
	}
	return out
}
