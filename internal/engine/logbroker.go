package engine

import (
	"sync"

	"github.com/seantiz/switchyard/internal/model"
)

// subscriberBufferSize is the channel buffer for each log subscriber.
// Entries are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// LogBroker fans diagnostic entries out to live subscribers.
// It is safe for concurrent use.
//
// After Close, Subscribe returns an already-closed channel so late
// subscribers never block.
type LogBroker struct {
	mu     sync.Mutex
	subs   map[int]chan model.LogEntry
	nextID int
	closed bool
}

// NewLogBroker creates a new log broker.
func NewLogBroker() *LogBroker {
	return &LogBroker{
		subs: make(map[int]chan model.LogEntry),
	}
}

// Subscribe returns a channel that receives every entry published from now
// on, and an unsubscribe function.
func (b *LogBroker) Subscribe() (<-chan model.LogEntry, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.LogEntry, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish sends an entry to all subscribers. Entries are dropped for
// subscribers whose buffers are full.
func (b *LogBroker) Publish(e model.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Drop for slow subscribers to avoid blocking the engine.
		}
	}
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (b *LogBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *LogBroker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
