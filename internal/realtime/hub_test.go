package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"eventbuddy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for delivery")
		return ""
	}
}

func assertQuiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected delivery %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_deliversInitialAndOnPublish(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	all := make(chan string, 8)
	one := make(chan string, 8)
	h.Subscribe(context.Background(), AllEvents, func(context.Context) { all <- "all" })
	h.Subscribe(context.Background(), "ev-1", func(context.Context) { one <- "ev-1" })

	recv(t, all)
	recv(t, one)

	h.Publish("ev-2")
	recv(t, all)
	assertQuiet(t, one)

	h.Publish("ev-1")
	recv(t, all)
	recv(t, one)
}

func TestHub_unsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	ch := make(chan string, 8)
	sub := h.Subscribe(context.Background(), AllEvents, func(context.Context) { ch <- "x" })
	recv(t, ch)

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.Eventually(t, func() bool { return h.Len() == 0 }, waitFor, 5*time.Millisecond)

	h.Publish("ev-1")
	assertQuiet(t, ch)
}

func TestHub_contextCancelEndsSubscription(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan string, 8)
	h.Subscribe(ctx, AllEvents, func(context.Context) { ch <- "x" })
	recv(t, ch)
	require.Equal(t, 1, h.Len())

	cancel()
	require.Eventually(t, func() bool { return h.Len() == 0 }, waitFor, 5*time.Millisecond)
}

func TestHub_coalescesPublishesDuringDelivery(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 8)
	h.Subscribe(context.Background(), AllEvents, func(context.Context) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 2 {
			<-release
		}
	})

	<-started
	h.Publish("a")
	<-started // second call is now blocked
	for i := 0; i < 10; i++ {
		h.Publish("a")
	}
	close(release)

	<-started
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHub_closeEndsAll(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < 3; i++ {
		h.Subscribe(context.Background(), AllEvents, func(context.Context) {})
	}
	h.Close()
	assert.Equal(t, 0, h.Len())

	called := make(chan string, 1)
	h.Subscribe(context.Background(), AllEvents, func(context.Context) { called <- "x" })
	assertQuiet(t, called)
}

func TestListFeed_suppressesDuplicateSnapshots(t *testing.T) {
	at := time.Date(2025, 12, 25, 14, 30, 0, 0, time.UTC)
	current := []*domain.Event{{ID: "1", Title: "Jazz", Datetime: at, Participants: []string{}}}
	var loadErr error
	var got [][]*domain.Event
	var errs []error

	deliver := ListFeed(
		func(context.Context) ([]*domain.Event, error) { return current, loadErr },
		func(events []*domain.Event, err error) {
			if err != nil {
				errs = append(errs, err)
				return
			}
			got = append(got, events)
		},
	)
	ctx := context.Background()

	deliver(ctx)
	deliver(ctx)
	require.Len(t, got, 1)

	current = []*domain.Event{{ID: "1", Title: "Jazz", Datetime: at, Participants: []string{"u1"}}}
	deliver(ctx)
	require.Len(t, got, 2)

	loadErr = errors.New("boom")
	deliver(ctx)
	deliver(ctx)
	assert.Len(t, got, 2)
	assert.Len(t, errs, 2)

	// the same list is delivered again once loading recovers
	loadErr = nil
	deliver(ctx)
	assert.Len(t, got, 3)
}

func TestListFeed_reportsInitialLoadFailure(t *testing.T) {
	loadErr := domain.NewUnreachable("list events", errors.New("connection refused"))
	var gotEvents []*domain.Event
	var gotErr error
	calls := 0

	ListFeed(
		func(context.Context) ([]*domain.Event, error) { return nil, loadErr },
		func(events []*domain.Event, err error) {
			calls++
			gotEvents, gotErr = events, err
		},
	)(context.Background())

	require.Equal(t, 1, calls)
	assert.Nil(t, gotEvents)
	assert.True(t, domain.IsRepository(gotErr, domain.Unreachable))
}

func TestItemFeed_reportsNotFoundOnce(t *testing.T) {
	e := &domain.Event{ID: "1", Title: "Jazz"}
	var loadErr error
	type call struct {
		event *domain.Event
		err   error
	}
	var calls []call

	deliver := ItemFeed(
		func(context.Context) (*domain.Event, error) {
			if loadErr != nil {
				return nil, loadErr
			}
			return e, nil
		},
		func(ev *domain.Event, err error) { calls = append(calls, call{ev, err}) },
	)
	ctx := context.Background()

	deliver(ctx)
	deliver(ctx)
	require.Len(t, calls, 1)
	assert.Same(t, e, calls[0].event)

	loadErr = domain.NewNotFound("get event")
	deliver(ctx)
	deliver(ctx)
	require.Len(t, calls, 2)
	assert.Nil(t, calls[1].event)
	assert.ErrorIs(t, calls[1].err, domain.ErrNotFound)
}

func TestFeeds_skipAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	ListFeed(
		func(context.Context) ([]*domain.Event, error) { return nil, nil },
		func([]*domain.Event, error) { called = true },
	)(ctx)
	assert.False(t, called)
}
