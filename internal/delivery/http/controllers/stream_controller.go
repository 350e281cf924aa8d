package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	h "eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/domain"
)

// Server-sent event names.
const (
	sseEvents   = "events"
	sseEvent    = "event"
	sseNotFound = "not_found"
	sseError    = "error"
)

const defaultHeartbeat = 25 * time.Second

type sseMessage struct {
	name string
	data any
}

// mailbox holds the latest undelivered message. A newer snapshot replaces an
// older one that the client has not received yet.
type mailbox chan sseMessage

func newMailbox() mailbox { return make(chan sseMessage, 1) }

func (m mailbox) put(msg sseMessage) {
	for {
		select {
		case m <- msg:
			return
		default:
		}
		select {
		case <-m:
		default:
		}
	}
}

// StreamController serves live subscriptions as text/event-stream.
type StreamController struct {
	Logger    *slog.Logger
	Service   domain.EventService
	Heartbeat time.Duration
}

func NewStreamController(logger *slog.Logger, svc domain.EventService) *StreamController {
	return &StreamController{
		Logger:    logger,
		Service:   svc,
		Heartbeat: defaultHeartbeat,
	}
}

// StreamEvents godoc
// @Summary Stream the event list
// @Description Server-sent events. An "events" message carries the full list matching q, ordered by datetime, on connect and after every change. Read failures are sent as "error" messages.
// @Tags events
// @Produce text/event-stream
// @Security BearerAuth
// @Param q query string false "Title search"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/stream [get]
func (c *StreamController) StreamEvents(w http.ResponseWriter, r *http.Request) {
	uid := callerID(r)
	box := newMailbox()
	sub, err := c.Service.SubscribeEvents(r.Context(), r.URL.Query().Get("q"), func(events []*domain.Event, err error) {
		if err != nil {
			c.Logger.Warn("event list stream read failed", "err", err)
			box.put(errorMessage(err, "failed to load events"))
			return
		}
		box.put(sseMessage{name: sseEvents, data: NewEventResponses(events, uid)})
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	defer sub.Unsubscribe()
	c.serve(w, r, box)
}

// StreamEvent godoc
// @Summary Stream one event
// @Description Server-sent events. An "event" message carries the latest state of the event. When it is deleted or missing a "not_found" message is sent and the stream ends. Read failures are sent as "error" messages.
// @Tags events
// @Produce text/event-stream
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/{eventID}/stream [get]
func (c *StreamController) StreamEvent(w http.ResponseWriter, r *http.Request) {
	uid := callerID(r)
	eventID := r.PathValue("eventID")
	box := newMailbox()
	sub, err := c.Service.SubscribeEvent(r.Context(), eventID, func(e *domain.Event, err error) {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			box.put(sseMessage{name: sseNotFound, data: map[string]string{"id": eventID}})
		case err != nil:
			c.Logger.Warn("event stream read failed", "event_id", eventID, "err", err)
			box.put(errorMessage(err, "failed to load event"))
		default:
			box.put(sseMessage{name: sseEvent, data: NewEventResponse(e, uid)})
		}
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	defer sub.Unsubscribe()
	c.serve(w, r, box)
}

// serve writes messages from box until the client goes away or a not_found
// message ends the stream.
func (c *StreamController) serve(w http.ResponseWriter, r *http.Request, box mailbox) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		c.Logger.Warn("failed to clear write deadline", "err", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		c.Logger.Warn("event stream cannot flush", "err", err)
		return
	}

	heartbeat := c.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case msg := <-box:
			if err := writeSSE(w, msg); err != nil {
				c.Logger.DebugContext(ctx, "event stream closed", "err", err)
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
			if msg.name == sseNotFound {
				return
			}
		}
	}
}

// errorMessage builds an error event carrying the status code for err.
func errorMessage(err error, message string) sseMessage {
	_, code := h.StatusFor(err)
	return sseMessage{name: sseError, data: h.APIError{Code: code, Message: message}}
}

func writeSSE(w http.ResponseWriter, msg sseMessage) error {
	data, err := json.Marshal(msg.data)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.name, data)
	return err
}
