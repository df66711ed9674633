package messaging

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

// MemoryBroker delivers messages within the process. A subscriber whose
// buffer is full misses the message.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]chan string
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]chan string)}
}

func (b *MemoryBroker) Publish(ctx context.Context, message string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- message:
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan string, error) {
	id := uuid.NewString()
	ch := make(chan string, subscriberBuffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
