package postgres

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type recordingBroadcaster struct {
	ids []string
	all int
}

func (r *recordingBroadcaster) Publish(eventID string) { r.ids = append(r.ids, eventID) }
func (r *recordingBroadcaster) PublishAll() { r.all++ }

func TestListener_dispatch(t *testing.T) {
	out := &recordingBroadcaster{}
	l := &Listener{out: out, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	l.dispatch(&pq.Notification{Channel: EventChangesChannel, Extra: "ev-1"})
	l.dispatch(nil)
	l.dispatch(&pq.Notification{Channel: EventChangesChannel})
	l.dispatch(&pq.Notification{Channel: EventChangesChannel, Extra: "ev-2"})

	assert.Equal(t, []string{"ev-1", "ev-2"}, out.ids)
	assert.Equal(t, 2, out.all)
}

func TestIsUnreachable(t *testing.T) {
	assert.True(t, isUnreachable(&pq.Error{Code: "08006"}))
	assert.True(t, isUnreachable(&pq.Error{Code: "57P01"}))
	assert.True(t, isUnreachable(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.False(t, isUnreachable(&pq.Error{Code: "23505"}))
	assert.False(t, isUnreachable(errors.New("boom")))
}
