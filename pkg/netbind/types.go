package netbind

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BindTimeout is how long a bind or spawn request may wait for its network
// object before it is dropped.
const BindTimeout = 5000 * time.Millisecond

type EntityID uint64

const InvalidEntityID EntityID = 0

func (id EntityID) IsValid() bool { return id != InvalidEntityID }

type NetworkObjectID uint32

const InvalidNetworkObjectID NetworkObjectID = 0

func (id NetworkObjectID) IsValid() bool { return id != InvalidNetworkObjectID }

// ContextSequence numbers level-load epochs. It only grows on the host.
type ContextSequence uint32

const InitialContextSequence ContextSequence = 1

// SliceBindContext describes which entity of which slice instance a network
// object should be bound to.
type SliceBindContext struct {
	TemplateAssetID uuid.UUID
	InstanceID      uuid.UUID
	DesiredEntityID EntityID
	ContextSequence ContextSequence
}

func (c SliceBindContext) String() string {
	return fmt.Sprintf("slice{template=%s instance=%s desired=%d seq=%d}",
		c.TemplateAssetID, c.InstanceID, c.DesiredEntityID, c.ContextSequence)
}

type BindState int

const (
	// FirstBindInSlice requests arrived before the slice instance spawned.
	FirstBindInSlice BindState = iota
	// LateBind requests arrived after it spawned and are served from cache.
	LateBind
	// PlaceholderBind requests were synthesized for networked template
	// entities nobody asked for yet.
	PlaceholderBind
)

func (s BindState) String() string {
	switch s {
	case FirstBindInSlice:
		return "first-bind"
	case LateBind:
		return "late-bind"
	case PlaceholderBind:
		return "placeholder"
	}
	return "unknown"
}

// BindRequest is a pending association between a template-local entity
// identity and a network object.
type BindRequest struct {
	DesiredEntityID EntityID
	// ActualEntityID is the runtime identity the template produced for
	// DesiredEntityID. Invalid until the instantiation reports it.
	ActualEntityID EntityID
	BoundTo        NetworkObjectID
	// RequestTime is the orchestrator clock at enqueue.
	RequestTime time.Duration
	State       BindState

	entity Entity
}

func (r *BindRequest) resolved() bool {
	return r.BoundTo.IsValid() && r.entity != nil
}

// SpawnRequest creates an entity from a serialized byte buffer.
type SpawnRequest struct {
	Payload         []byte
	DesiredEntityID EntityID
	BoundTo         NetworkObjectID
	RequestTime     time.Duration

	entity Entity
}
