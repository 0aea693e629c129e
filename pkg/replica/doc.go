// Package replica is a minimal replicated network session. The host
// announces network objects and the slice binds and stream spawns that go
// with them; clients feed those into a Binder and resolve the announced
// objects through the netbind.NetworkLayer implementation.
//
// Links read on their own goroutines. Everything else happens in OnTick,
// which must run on the same goroutine as the orchestrator it serves.
package replica
