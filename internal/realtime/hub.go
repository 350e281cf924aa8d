// Package realtime implements cancelable push subscriptions over the event catalog.
package realtime

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"eventbuddy/internal/domain"
)

// AllEvents is the topic of subscribers that want every change.
const AllEvents = ""

// Publisher is notified after an event changes.
type Publisher interface {
	Publish(eventID string)
}

// Hub fans change notifications out to subscribers. Every subscriber owns one
// goroutine that calls its deliver func once at start and again after each
// matching Publish. Publishes that arrive while deliver runs collapse into a
// single further call, so a subscriber always ends on the latest state.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
}

// NewHub returns an empty Hub. A nil logger discards output.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		logger: logger,
		subs:   make(map[uint64]*subscriber),
	}
}

type subscriber struct {
	hub    *Hub
	id     uint64
	topic  string
	signal chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// Unsubscribe stops further deliveries. It does not wait for a delivery in progress,
// so it is safe to call from inside the deliver func.
func (s *subscriber) Unsubscribe() {
	s.cancel()
	s.hub.remove(s.id)
}

// Subscribe registers deliver for topic (an event id, or AllEvents). The subscription
// ends on Unsubscribe, when ctx is cancelled, or when the hub closes.
func (h *Hub) Subscribe(ctx context.Context, topic string, deliver func(ctx context.Context)) domain.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscriber{
		hub:    h,
		topic:  topic,
		signal: make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		close(s.done)
		return s
	}
	h.nextID++
	s.id = h.nextID
	h.subs[s.id] = s
	h.mu.Unlock()

	h.logger.Debug("subscription opened", "id", s.id, "topic", topic)
	go s.run(ctx, deliver)
	return s
}

func (s *subscriber) run(ctx context.Context, deliver func(ctx context.Context)) {
	defer close(s.done)
	defer s.hub.remove(s.id)

	deliver(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.signal:
			if ctx.Err() != nil {
				return
			}
			deliver(ctx)
		}
	}
}

// Publish wakes the subscribers of eventID and of AllEvents.
func (h *Hub) Publish(eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s.topic != AllEvents && s.topic != eventID {
			continue
		}
		select {
		case s.signal <- struct{}{}:
		default:
			// already pending
		}
	}
}

// PublishAll wakes every subscriber, e.g. after a reconnect where changes may have been missed.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		select {
		case s.signal <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription and waits for their goroutines to return.
// Subscribe after Close returns an already-ended subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.cancel()
	}
	for _, s := range subs {
		<-s.done
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	if _, ok := h.subs[id]; ok {
		delete(h.subs, id)
		h.mu.Unlock()
		h.logger.Debug("subscription closed", "id", id)
		return
	}
	h.mu.Unlock()
}
