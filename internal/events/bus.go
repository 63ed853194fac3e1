// Package events provides the in-process publish/subscribe bus for
// launchpad events, consumed by the websocket hub and the analytics
// recorder.
package events

import (
	"sync"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

// Bus fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event, so slow consumers
// cannot stall factory operations.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan domain.Event
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan domain.Event)}
}

// Subscribe registers a subscriber with the given channel buffer.
// The returned cancel function removes the subscription and closes the
// channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan domain.Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber with buffer space.
func (b *Bus) Publish(e domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber buffer full, drop
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
