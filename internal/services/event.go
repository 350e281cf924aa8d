package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventbuddy/internal/catalog"
	"eventbuddy/internal/domain"
)

type eventService struct {
	events         domain.EventRepository
	profiles       domain.UserProfileRepository
	contextTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewEventService returns an EventService. Admin-only operations check the caller's
// profile through profiles.
func NewEventService(events domain.EventRepository, profiles domain.UserProfileRepository, timeout time.Duration, logger *slog.Logger) domain.EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		events:         events,
		profiles:       profiles,
		contextTimeout: timeout,
		logger:         logger,
		now:            time.Now,
	}
}

// requireAdmin fails closed: a missing profile or a lookup error denies the caller.
func (s *eventService) requireAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthorized
	}
	profile, err := s.profiles.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		s.logger.WarnContext(ctx, "admin lookup failed", "uid", callerID, "error", err)
		return fmt.Errorf("failed to resolve caller role: %w", err)
	}
	if !profile.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, callerID string, form domain.EventForm) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	fields, err := catalog.ValidateEventForm(form, domain.CreateMode)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	id, err := s.events.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	now := s.now().UTC()
	event := domain.NewEvent(fields, now, now)
	event.ID = id
	s.logger.InfoContext(ctx, "event created", "event_id", id, "by", callerID)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, callerID, eventID string, form domain.EventForm) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	fields, err := catalog.ValidateEventForm(form, domain.EditMode)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, eventID, fields); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, callerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", eventID, "by", callerID)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.events.GetByID(ctx, eventID)
}

func (s *eventService) GetEventForm(ctx context.Context, callerID, eventID string) (*domain.EventForm, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	form := catalog.FormFromEvent(event)
	return &form, nil
}

func (s *eventService) ListEvents(ctx context.Context, query string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return catalog.Browse(events, strings.TrimSpace(query)), nil
}

// ToggleParticipation writes the toggled participant list and returns the event as stored.
// A failed write returns the error and no event.
func (s *eventService) ToggleParticipation(ctx context.Context, eventID, userID string) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	next := catalog.ToggleParticipation(event.Participants, userID)
	if err := s.events.UpdateParticipants(ctx, eventID, next); err != nil {
		return nil, false, fmt.Errorf("failed to update participants: %w", err)
	}
	event.Participants = next
	return event, event.HasParticipant(userID), nil
}

func (s *eventService) SubscribeEvents(ctx context.Context, query string, fn func([]*domain.Event, error)) (domain.Subscription, error) {
	query = strings.TrimSpace(query)
	return s.events.SubscribeEvents(ctx, func(events []*domain.Event, err error) {
		if err != nil {
			fn(nil, fmt.Errorf("failed to load events: %w", err))
			return
		}
		fn(catalog.Browse(events, query), nil)
	})
}

func (s *eventService) SubscribeEvent(ctx context.Context, eventID string, fn func(*domain.Event, error)) (domain.Subscription, error) {
	return s.events.SubscribeEvent(ctx, eventID, fn)
}
