package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// EventChangesChannel is the NOTIFY channel the events trigger writes the changed id to.
const EventChangesChannel = "event_changes"

// Broadcaster receives change notifications from the listener.
type Broadcaster interface {
	Publish(eventID string)
	PublishAll()
}

// Listener relays NOTIFY payloads from PostgreSQL to a Broadcaster, so subscribers
// see writes made by other processes (other API instances, the CLI, manual SQL).
type Listener struct {
	listener     *pq.Listener
	out          Broadcaster
	logger       *slog.Logger
	pingInterval time.Duration
}

// NewListener opens a dedicated LISTEN connection to dsn.
func NewListener(dsn string, out Broadcaster, logger *slog.Logger) *Listener {
	l := &Listener{out: out, logger: logger, pingInterval: 90 * time.Second}
	l.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, l.onEvent)
	return l
}

func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Info("event listener connected")
	case pq.ListenerEventDisconnected:
		l.logger.Warn("event listener disconnected", "error", err)
	case pq.ListenerEventReconnected:
		l.logger.Info("event listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Warn("event listener connection attempt failed", "error", err)
	}
}

// Run listens until ctx is done, then closes the connection.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.listener.Listen(EventChangesChannel); err != nil {
		_ = l.listener.Close()
		return err
	}
	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return l.listener.Close()
		case n := <-l.listener.Notify:
			l.dispatch(n)
		case <-ticker.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.logger.Warn("event listener ping failed", "error", err)
				}
			}()
		}
	}
}

// dispatch forwards one notification. A nil notification follows a reconnect,
// after which any change may have been missed.
func (l *Listener) dispatch(n *pq.Notification) {
	if n == nil {
		l.out.PublishAll()
		return
	}
	if n.Extra == "" {
		l.out.PublishAll()
		return
	}
	l.out.Publish(n.Extra)
}
