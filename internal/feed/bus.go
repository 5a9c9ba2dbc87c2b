package feed

import (
	"sync"

	"github.com/tradedesk/tradedesk/internal/models"
)

// Bus fans price ticks out to subscribers. Every tick reaches every
// subscriber; filtering by pair is the subscriber's job. A subscriber
// that falls behind loses ticks instead of blocking the feed reader.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan models.PriceTick
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan models.PriceTick)}
}

// Subscribe registers a new subscriber and returns its tick channel
// together with an unsubscribe function. The channel is closed on
// unsubscribe.
func (b *Bus) Subscribe(buffer int) (<-chan models.PriceTick, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan models.PriceTick, buffer)
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers tick to all current subscribers. Full subscriber
// buffers drop the tick.
func (b *Bus) Publish(tick models.PriceTick) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- tick:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
