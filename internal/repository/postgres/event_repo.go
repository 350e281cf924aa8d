package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"eventbuddy/internal/domain"
	"eventbuddy/internal/realtime"
)

const eventColumns = `id, title, description, location, datetime, image_url, participants, created_at, updated_at`

type eventRepository struct {
	DB     *sql.DB
	hub    *realtime.Hub
	logger *slog.Logger
}

// NewEventRepository returns an EventRepository backed by the events table.
// Mutations are published to hub; the NOTIFY listener covers writes made by other processes.
func NewEventRepository(db *sql.DB, hub *realtime.Hub, logger *slog.Logger) domain.EventRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &eventRepository{
		DB:     db,
		hub:    hub,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var participants []string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Datetime, &e.ImageURL,
		pq.Array(&participants), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Datetime = wallClockUTC(e.Datetime)
	if participants == nil {
		participants = []string{}
	}
	e.Participants = participants
	return e, nil
}

// wallClockUTC keeps the wall clock of a timestamp-without-time-zone value and pins it to UTC.
func wallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (r *eventRepository) queryEvents(ctx context.Context, op, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, readError(op, err)
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, readError(op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(op, err)
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, fields domain.EventFields) (string, error) {
	query := `
		INSERT INTO events (title, description, location, datetime, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id string
	err := r.DB.QueryRowContext(ctx, query,
		fields.Title, fields.Description, fields.Location, wallClockUTC(fields.Datetime), fields.ImageURL,
	).Scan(&id)
	if err != nil {
		return "", writeError("create event", err)
	}
	r.hub.Publish(id)
	return id, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, readError("get event", err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY datetime ASC, created_at ASC`
	return r.queryEvents(ctx, "list events", query)
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return []*domain.Event{}, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id::text = ANY($1) ORDER BY datetime ASC, created_at ASC`
	return r.queryEvents(ctx, "list events by id", query, pq.Array(ids))
}

func (r *eventRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE $1 = ANY(participants) ORDER BY datetime ASC, created_at ASC`
	return r.queryEvents(ctx, "list events by participant", query, userID)
}

func (r *eventRepository) Update(ctx context.Context, id string, fields domain.EventFields) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, datetime = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query,
		fields.Title, fields.Description, fields.Location, wallClockUTC(fields.Datetime), fields.ImageURL, id,
	)
	if err != nil {
		return writeError("update event", err)
	}
	if err := affectedOne("update event", result); err != nil {
		return err
	}
	r.hub.Publish(id)
	return nil
}

func (r *eventRepository) UpdateParticipants(ctx context.Context, id string, participants []string) error {
	if participants == nil {
		participants = []string{}
	}
	query := `UPDATE events SET participants = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, pq.Array(participants), id)
	if err != nil {
		return writeError("update participants", err)
	}
	if err := affectedOne("update participants", result); err != nil {
		return err
	}
	r.hub.Publish(id)
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return writeError("delete event", err)
	}
	if err := affectedOne("delete event", result); err != nil {
		return err
	}
	r.hub.Publish(id)
	return nil
}

func (r *eventRepository) SubscribeEvents(ctx context.Context, fn func([]*domain.Event, error)) (domain.Subscription, error) {
	deliver := func(events []*domain.Event, err error) {
		if err != nil {
			r.logger.Warn("event list refresh failed", "error", err)
		}
		fn(events, err)
	}
	return r.hub.Subscribe(ctx, realtime.AllEvents, realtime.ListFeed(r.List, deliver)), nil
}

func (r *eventRepository) SubscribeEvent(ctx context.Context, id string, fn func(*domain.Event, error)) (domain.Subscription, error) {
	load := func(ctx context.Context) (*domain.Event, error) {
		return r.GetByID(ctx, id)
	}
	return r.hub.Subscribe(ctx, id, realtime.ItemFeed(load, fn)), nil
}
