package app

import (
	"sync"

	"trivia-quiz-service/internal/domain"
)

// eventHub fans quiz events out to subscribers. Slow subscribers lose their oldest
// pending event rather than blocking the publisher.
type eventHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.QuizEvent]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[chan domain.QuizEvent]struct{})}
}

func (h *eventHub) subscribe(initial domain.QuizEvent) (<-chan domain.QuizEvent, func()) {
	ch := make(chan domain.QuizEvent, 8)
	ch <- initial

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *eventHub) publish(event domain.QuizEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
