// Package bus fans broadcast frames out to every server process.
package bus

import "context"

// Bus delivers each published frame once to every live subscription
type Bus interface {
	Publish(ctx context.Context, frame []byte) error
	// Subscribe returns a channel that is closed when ctx ends or the bus closes
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}
