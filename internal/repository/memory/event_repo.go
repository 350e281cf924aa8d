// Package memory holds in-process repositories for local development and tests.
package memory

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventbuddy/internal/catalog"
	"eventbuddy/internal/domain"
	"eventbuddy/internal/realtime"
)

// EventRepository keeps events in a map. It is safe for concurrent use.
type EventRepository struct {
	hub    *realtime.Hub
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventRepository returns an empty repository that publishes changes to hub.
func NewEventRepository(hub *realtime.Hub, logger *slog.Logger) *EventRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EventRepository{
		hub:    hub,
		logger: logger,
		now:    time.Now,
		events: make(map[string]*domain.Event),
	}
}

func (r *EventRepository) Create(ctx context.Context, fields domain.EventFields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewUnreachable("create event", err)
	}
	now := r.now().UTC()
	e := domain.NewEvent(fields, now, now)
	e.ID = uuid.NewString()

	r.mu.Lock()
	r.events[e.ID] = e
	r.mu.Unlock()

	r.hub.Publish(e.ID)
	return e.ID, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable("get event", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFound("get event")
	}
	return e.Clone(), nil
}

func (r *EventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.filter(ctx, "list events", func(*domain.Event) bool { return true })
}

func (r *EventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	return r.filter(ctx, "list events by id", func(e *domain.Event) bool {
		return slices.Contains(ids, e.ID)
	})
}

func (r *EventRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Event, error) {
	return r.filter(ctx, "list events by participant", func(e *domain.Event) bool {
		return e.HasParticipant(userID)
	})
}

// filter returns matching events ordered by datetime, then creation time.
func (r *EventRepository) filter(ctx context.Context, op string, keep func(*domain.Event) bool) ([]*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable(op, err)
	}
	r.mu.RLock()
	out := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *domain.Event) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return catalog.SortByDatetimeAscending(out), nil
}

func (r *EventRepository) mutate(ctx context.Context, op, id string, fn func(e *domain.Event)) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable(op, err)
	}
	r.mu.Lock()
	e, ok := r.events[id]
	if !ok {
		r.mu.Unlock()
		return domain.NewNotFound(op)
	}
	fn(e)
	e.UpdatedAt = r.now().UTC()
	r.mu.Unlock()

	r.hub.Publish(id)
	return nil
}

func (r *EventRepository) Update(ctx context.Context, id string, fields domain.EventFields) error {
	return r.mutate(ctx, "update event", id, func(e *domain.Event) {
		e.Apply(fields)
	})
}

func (r *EventRepository) UpdateParticipants(ctx context.Context, id string, participants []string) error {
	cp := slices.Clone(participants)
	if cp == nil {
		cp = []string{}
	}
	return r.mutate(ctx, "update participants", id, func(e *domain.Event) {
		e.Participants = cp
	})
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable("delete event", err)
	}
	r.mu.Lock()
	_, ok := r.events[id]
	delete(r.events, id)
	r.mu.Unlock()
	if !ok {
		return domain.NewNotFound("delete event")
	}
	r.hub.Publish(id)
	return nil
}

func (r *EventRepository) SubscribeEvents(ctx context.Context, fn func([]*domain.Event, error)) (domain.Subscription, error) {
	deliver := func(events []*domain.Event, err error) {
		if err != nil {
			r.logger.Warn("event list refresh failed", "error", err)
		}
		fn(events, err)
	}
	return r.hub.Subscribe(ctx, realtime.AllEvents, realtime.ListFeed(r.List, deliver)), nil
}

func (r *EventRepository) SubscribeEvent(ctx context.Context, id string, fn func(*domain.Event, error)) (domain.Subscription, error) {
	load := func(ctx context.Context) (*domain.Event, error) {
		return r.GetByID(ctx, id)
	}
	return r.hub.Subscribe(ctx, id, realtime.ItemFeed(load, fn)), nil
}
