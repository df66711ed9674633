// Package messaging fans topic messages out to WebSocket clients.
package messaging

import "context"

// Broker is a publish/subscribe channel for one topic. Subscriptions end
// when ctx is cancelled.
type Broker interface {
	Publish(ctx context.Context, message string) error
	Subscribe(ctx context.Context) (<-chan string, error)
}
