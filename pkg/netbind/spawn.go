package netbind

import "github.com/google/uuid"

func (o *Orchestrator) processSpawnRequests() {
	current := o.sequencer.current
	o.spawnQueues.pruneBelow(current, o.purgeSpawnQueue)

	q, ok := o.spawnQueues.get(current)
	if !ok || len(q.requests) == 0 {
		return
	}
	if o.assets == nil || !o.assets.IsReady() {
		return
	}

	kept := q.requests[:0]
	for _, r := range q.requests {
		if !o.processSpawnRequest(r) {
			kept = append(kept, r)
		}
	}
	clear(q.requests[len(kept):])
	q.requests = kept
}

// processSpawnRequest reports whether r is finished, either spawned or
// discarded.
func (o *Orchestrator) processSpawnRequest(r *SpawnRequest) bool {
	if r.entity == nil {
		e, err := o.assets.LoadEntityFromStream(r.Payload, r.DesiredEntityID)
		if err != nil {
			o.log.Warn("failed to load entity from stream",
				"desired", r.DesiredEntityID, "object", r.BoundTo, "error", err)
			return true
		}
		r.entity = e
		r.Payload = nil
	}

	if !r.BoundTo.IsValid() {
		o.entities.AddEntity(r.entity)
		if r.entity.State() == EntityConstructed {
			o.entities.InitEntity(r.entity)
		}
		o.entities.ActivateEntity(r.entity)
		return true
	}

	if o.BindAndActivate(r.entity, r.BoundTo, true, uuid.Nil) {
		return true
	}
	if o.now-r.RequestTime >= BindTimeout {
		o.log.Warn("stream spawn timed out waiting for network object",
			"entity", r.entity.ID(), "object", r.BoundTo)
		o.entities.DestroyEntity(r.entity)
		return true
	}
	return false
}

func (o *Orchestrator) purgeSpawnQueue(seq ContextSequence, q *spawnQueue) {
	for _, r := range q.requests {
		if r.entity != nil {
			o.entities.DestroyEntity(r.entity)
		}
	}
	if len(q.requests) > 0 {
		o.log.Debug("purged stale spawn requests", "seq", seq, "count", len(q.requests))
	}
}
