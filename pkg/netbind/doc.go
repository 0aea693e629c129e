// Package netbind decides which local entity a replicated network object
// becomes, and when.
//
// Entities are produced either by instantiating a slice template, which is
// asynchronous, or by decoding a serialized entity from a byte stream. The
// Orchestrator queues bind and spawn requests per context sequence, drives
// them once per simulation tick and activates an entity only after it has
// been attached to its network object. Bumping the context sequence (a level
// reload on the host) cancels everything queued under the previous one.
//
// All state is mutated from OnTick and the enqueue calls, which must run on
// the same goroutine. Template instantiation callbacks may arrive inside
// RequestTemplateInstantiation or on any later tick, but also on that
// goroutine.
package netbind
