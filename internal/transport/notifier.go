// Package transport carries packed samples to the outside world. Every
// transport is lossy from the node's point of view: a failed Notify reports
// back to the consumer task, which decides whether to requeue.
package transport

import "errors"

// ErrNoPeer is returned by Notify when no subscribed peer is attached at
// delivery time. Callers should treat it like any other delivery failure.
var ErrNoPeer = errors.New("transport: no subscribed peer")

// Notifier delivers one packed sample per call.
type Notifier interface {
	// Ready reports whether a delivery attempt is worthwhile right now:
	// a peer is attached and has enabled streaming. The consumer must not
	// pop a sample while Ready is false, since delivery would destroy it.
	Ready() bool

	// Notify synchronously delivers one packed sample. A non-nil error
	// means the sample was not delivered and may be requeued.
	Notify(payload []byte) error

	Close() error
}
