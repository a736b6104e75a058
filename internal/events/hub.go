package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// Hub fans events out to in-process subscribers grouped by call.
// Slow subscribers lose events instead of blocking publishers.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan Event]struct{})}
}

// Subscribe registers for events of callID. The returned cancel func must
// be called once; it closes the channel.
func (h *Hub) Subscribe(callID uint) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[callID] == nil {
		h.subs[callID] = make(map[chan Event]struct{})
	}
	h.subs[callID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[callID], ch)
			if len(h.subs[callID]) == 0 {
				delete(h.subs, callID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(_ context.Context, evt Event) error {
	h.Deliver(evt)
	return nil
}

// Deliver hands evt to every current subscriber of its call.
func (h *Hub) Deliver(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[evt.CallID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(callID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[callID])
}
