package api

import (
	"sync"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// eventQueue is an unbounded engine.Sink. Notify never blocks, so the
// engine can deliver events while a slow client drains the queue from
// another goroutine.
type eventQueue struct {
	mu     sync.Mutex
	events []engine.Event
	ready  chan struct{} // signalled when events were queued
	closed chan struct{}
	once   sync.Once
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		ready:  make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Notify implements engine.Sink.
func (q *eventQueue) Notify(ev engine.Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// drain returns and removes all queued events.
func (q *eventQueue) drain() []engine.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

// close wakes up readers waiting on the queue for good.
func (q *eventQueue) close() {
	q.once.Do(func() { close(q.closed) })
}
