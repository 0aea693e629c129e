package netbind

import "errors"

var (
	// ErrNotReady is returned by a NetworkLayer that cannot accept
	// registrations yet. AddReplicaMaster buffers the request and retries.
	ErrNotReady = errors.New("network layer not ready")

	ErrInvalidNetworkObject = errors.New("invalid network object")
	ErrInvalidEntity        = errors.New("invalid entity")
)
