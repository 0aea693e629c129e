package netbind

import "github.com/google/uuid"

//go:generate mockgen -destination=mocks/mock_network.go -package=mocks . NetworkLayer

// EntityState is the lifecycle state of an entity as seen by the runtime.
type EntityState int

const (
	EntityConstructed EntityState = iota
	EntityInitialized
	EntityActive
	EntityInactive
)

func (s EntityState) String() string {
	switch s {
	case EntityConstructed:
		return "constructed"
	case EntityInitialized:
		return "initialized"
	case EntityActive:
		return "active"
	case EntityInactive:
		return "inactive"
	}
	return "unknown"
}

// Entity is a local game entity. Its lifetime belongs to the EntityRuntime.
type Entity interface {
	ID() EntityID
	State() EntityState
	// SetActivateByDefault controls whether the runtime may activate the
	// entity on its own once it is added to a context.
	SetActivateByDefault(activate bool)
	// NetBinding returns the entity's network-binding capability, or nil
	// when the entity is not networked.
	NetBinding() NetBinding
}

// NetBinding is the component that attaches an entity to a network object.
type NetBinding interface {
	BindTo(obj NetworkObject)
	SetSliceInstanceID(id uuid.UUID)
}

// NetworkObject is a handle to a replica owned by the network layer.
// Only the id is retained by this package between ticks.
type NetworkObject interface {
	ID() NetworkObjectID
}

// EntityRuntime is the entity/component runtime.
type EntityRuntime interface {
	// AddEntity registers the entity with the game entity context.
	AddEntity(e Entity)
	InitEntity(e Entity)
	ActivateEntity(e Entity)
	DeactivateEntity(e Entity)
	DestroyEntity(e Entity)
	FindEntityByID(id EntityID) (Entity, bool)
}

// NetworkLayer is the network session as seen from the binding core.
type NetworkLayer interface {
	IsReady() bool
	IsSessionHost() bool
	FindNetworkObjectByID(id NetworkObjectID) (NetworkObject, bool)
	// RegisterLocalObject publishes a locally authoritative object. It
	// returns ErrNotReady while the session cannot take registrations.
	RegisterLocalObject(entity EntityID, obj NetworkObject) error
}

// InstantiationTicket identifies one outstanding template instantiation.
type InstantiationTicket uint64

// TemplateEntity pairs the identity an entity has inside its template with
// the entity the instantiation produced for it.
type TemplateEntity struct {
	LocalID EntityID
	Entity  Entity
}

// IdentityRemapFunc maps a template-local identity to the runtime identity
// the produced entity should carry.
type IdentityRemapFunc func(local EntityID) EntityID

// InstantiationCallbacks receives the asynchronous outcome of a template
// instantiation. PreInstantiate, when delivered, precedes OnInstantiated.
type InstantiationCallbacks interface {
	PreInstantiate(ticket InstantiationTicket, entities []TemplateEntity)
	OnInstantiated(ticket InstantiationTicket, entities []TemplateEntity)
	OnInstantiationFailed(ticket InstantiationTicket)
}

// AssetLoader is the asset-loading subsystem.
type AssetLoader interface {
	IsReady() bool
	// RequestTemplateInstantiation may invoke cb before it returns.
	RequestTemplateInstantiation(templateAssetID uuid.UUID, remap IdentityRemapFunc, cb InstantiationCallbacks) (InstantiationTicket, error)
	CancelInstantiation(ticket InstantiationTicket)
	// LoadEntityFromStream decodes one serialized entity and gives it id.
	LoadEntityFromStream(payload []byte, id EntityID) (Entity, error)
}
