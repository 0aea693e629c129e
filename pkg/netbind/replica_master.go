package netbind

import (
	"errors"
	"fmt"
)

// AddReplicaMaster publishes the network object of a locally authoritative
// entity. While the network layer is not ready the request is buffered and
// retried every tick.
func (o *Orchestrator) AddReplicaMaster(entity Entity, obj NetworkObject) error {
	if entity == nil || !entity.ID().IsValid() {
		return ErrInvalidEntity
	}
	if obj == nil || !obj.ID().IsValid() {
		return ErrInvalidNetworkObject
	}

	req := replicaMasterRequest{entity: entity.ID(), object: obj}
	if o.network != nil && o.network.IsReady() {
		err := o.network.RegisterLocalObject(req.entity, req.object)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotReady) {
			return fmt.Errorf("register replica master %d: %w", req.object.ID(), err)
		}
	}
	o.replicaMasters = append(o.replicaMasters, req)
	return nil
}

func (o *Orchestrator) PendingReplicaMasterCount() int {
	return len(o.replicaMasters)
}

func (o *Orchestrator) replayReplicaMasters() {
	if len(o.replicaMasters) == 0 || o.network == nil || !o.network.IsReady() {
		return
	}

	kept := o.replicaMasters[:0]
	for _, req := range o.replicaMasters {
		if _, ok := o.entities.FindEntityByID(req.entity); !ok {
			kept = append(kept, req)
			continue
		}
		err := o.network.RegisterLocalObject(req.entity, req.object)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotReady):
			kept = append(kept, req)
		default:
			o.log.Warn("dropping replica master", "entity", req.entity, "object", req.object.ID(), "error", err)
		}
	}
	clear(o.replicaMasters[len(kept):])
	o.replicaMasters = kept
}
