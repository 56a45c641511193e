package feed

import "sync"

// Subscriber is one long-lived connection's event queue.
type Subscriber struct {
	ch      chan Event
	dropped int
}

// Events yields the subscriber's ordered event stream. The channel closes
// when the subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// Hub fans events out to the currently open subscriber set.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	s := &Subscriber{ch: make(chan Event, buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Broadcast delivers ev to every subscriber without blocking; a subscriber
// whose buffer is full has the write dropped rather than stalling the tick.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			s.dropped++
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
