package realtime

import (
	"context"
	"errors"
	"slices"

	"eventbuddy/internal/domain"
)

// ListFeed returns a deliver func for Hub.Subscribe that loads the event list and
// passes it to fn when it differs from the last delivered list. Load errors are
// passed as (nil, err) every time; the next successful load is delivered even if
// it matches the list delivered before the failure.
func ListFeed(load func(ctx context.Context) ([]*domain.Event, error), fn func([]*domain.Event, error)) func(ctx context.Context) {
	var last []*domain.Event
	delivered := false
	return func(ctx context.Context) {
		events, err := load(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			delivered = false
			fn(nil, err)
			return
		}
		if delivered && equalLists(last, events) {
			return
		}
		last, delivered = events, true
		fn(events, nil)
	}
}

// ItemFeed returns a deliver func that loads one event and passes it to fn when it
// changed. A missing event is reported once as (nil, ErrNotFound); other load errors
// are passed through every time.
func ItemFeed(load func(ctx context.Context) (*domain.Event, error), fn func(*domain.Event, error)) func(ctx context.Context) {
	var last *domain.Event
	state := 0 // 0 nothing delivered, 1 event delivered, 2 not-found delivered
	return func(ctx context.Context) {
		e, err := load(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if state == 2 {
				return
			}
			state, last = 2, nil
			fn(nil, domain.ErrNotFound)
		case err != nil:
			fn(nil, err)
		default:
			if state == 1 && equalEvents(last, e) {
				return
			}
			state, last = 1, e
			fn(e, nil)
		}
	}
}

func equalLists(a, b []*domain.Event) bool {
	return slices.EqualFunc(a, b, equalEvents)
}

func equalEvents(a, b *domain.Event) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Location == b.Location &&
		a.Datetime.Equal(b.Datetime) &&
		a.ImageURL == b.ImageURL &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		slices.Equal(a.Participants, b.Participants)
}
