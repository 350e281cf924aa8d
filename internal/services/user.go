package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"eventbuddy/internal/catalog"
	"eventbuddy/internal/domain"
)

type profileService struct {
	profiles       domain.UserProfileRepository
	events         domain.EventRepository
	contextTimeout time.Duration
}

// NewProfileService returns a ProfileService over the profile and event repositories.
func NewProfileService(profiles domain.UserProfileRepository, events domain.EventRepository, timeout time.Duration) domain.ProfileService {
	return &profileService{
		profiles:       profiles,
		events:         events,
		contextTimeout: timeout,
	}
}

func (s *profileService) GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.profiles.GetByID(ctx, uid)
}

// ToggleFavorite writes the toggled favorites list first and returns it only once stored.
func (s *profileService) ToggleFavorite(ctx context.Context, uid, eventID string) ([]string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(eventID) == "" {
		return nil, false, &domain.ValidationError{Kind: domain.MissingField, Field: "eventId"}
	}
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return nil, false, err
	}
	next := catalog.ToggleFavorite(profile.Favorites, eventID)
	if err := s.profiles.UpdateFavorites(ctx, uid, next); err != nil {
		return nil, false, fmt.Errorf("failed to update favorites: %w", err)
	}
	return next, slices.Contains(next, eventID), nil
}

func (s *profileService) ListFavoriteEvents(ctx context.Context, uid string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*domain.Event{}, nil
		}
		return nil, err
	}
	events, err := s.events.ListByIDs(ctx, profile.Favorites)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite events: %w", err)
	}
	return catalog.SortByDatetimeAscending(events), nil
}

func (s *profileService) ListParticipatingEvents(ctx context.Context, uid string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.events.ListByParticipant(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list participating events: %w", err)
	}
	return catalog.SortByDatetimeAscending(events), nil
}

// SetAdmin grants or revokes the admin flag for the profile registered under email.
func (s *profileService) SetAdmin(ctx context.Context, email string, isAdmin bool) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetAdmin(ctx, profile.UID, isAdmin); err != nil {
		return nil, fmt.Errorf("failed to update admin flag: %w", err)
	}
	profile.IsAdmin = isAdmin
	return profile, nil
}
