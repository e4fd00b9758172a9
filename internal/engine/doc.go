// Package engine owns one simulation instance bound to one drawing surface.
//
// An Engine moves through three states:
//
//	Constructing -> Live -> Destroyed
//
// New either returns a Live engine or an error with nothing left allocated.
// Animate and Resize are only valid while Live. Destroy releases every
// resource and is terminal: any further call panics with ErrDestroyed, since
// it can only be a host bug.
//
// # Timestamps
//
// Animate takes a monotonic timestamp in milliseconds on any epoch, such as
// performance.now() in a browser. The first call only establishes the
// baseline. Each later call advances the fluid by exactly the time since the
// previous call; a timestamp that goes backward yields a zero delta.
//
// # Thread Safety
//
// An Engine has no internal locking. It must have a single owner that makes
// calls sequentially, typically the host's render thread. Different engines
// are independent and may be driven from different goroutines.
package engine
