package stream

import (
	"context"
	"sync"
	"time"
)

// Event describes one committed store mutation. Views subscribe and re-read
// the store snapshot whenever an event arrives (render-on-change).
type Event struct {
	Store    string    `json:"store"`
	Op       string    `json:"op"`
	EntityID string    `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// Stream fan-outs change events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish delivers the event to every subscriber. Slow subscribers are
// skipped rather than blocking the mutating store.
func (s *Stream) Publish(e Event) {
	if s == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
