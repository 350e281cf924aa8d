package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbuddy/internal/domain"
)

func TestProfileService_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo(userProfile())
	profiles.byID["user-1"].Favorites = []string{"ev-1", "ev-2"}
	svc := NewProfileService(profiles, newFakeEventRepo(), time.Second)

	favorites, isFavorite, err := svc.ToggleFavorite(ctx, "user-1", "ev-3")
	require.NoError(t, err)
	assert.True(t, isFavorite)
	assert.Equal(t, []string{"ev-1", "ev-2", "ev-3"}, favorites)

	favorites, isFavorite, err = svc.ToggleFavorite(ctx, "user-1", "ev-1")
	require.NoError(t, err)
	assert.False(t, isFavorite)
	assert.Equal(t, []string{"ev-2", "ev-3"}, favorites)
	assert.Equal(t, []string{"ev-2", "ev-3"}, profiles.byID["user-1"].Favorites)

	_, _, err = svc.ToggleFavorite(ctx, "user-1", " ")
	assert.True(t, domain.IsValidation(err, domain.MissingField))

	_, _, err = svc.ToggleFavorite(ctx, "ghost", "ev-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileService_ToggleFavorite_failedWriteIsNotApplied(t *testing.T) {
	profiles := newFakeProfileRepo(userProfile())
	profiles.byID["user-1"].Favorites = []string{"ev-1"}
	profiles.updateErr = domain.NewWriteFailed("update favorites", errors.New("boom"))
	svc := NewProfileService(profiles, newFakeEventRepo(), time.Second)

	favorites, isFavorite, err := svc.ToggleFavorite(context.Background(), "user-1", "ev-2")
	require.True(t, domain.IsRepository(err, domain.WriteFailed))
	assert.Nil(t, favorites)
	assert.False(t, isFavorite)
	assert.Equal(t, []string{"ev-1"}, profiles.byID["user-1"].Favorites)
}

func TestProfileService_ListFavoriteEvents(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo()
	events.seed(&domain.Event{ID: "late", Title: "Late", Datetime: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)})
	events.seed(&domain.Event{ID: "early", Title: "Early", Datetime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	events.seed(&domain.Event{ID: "other", Title: "Other", Datetime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	profiles := newFakeProfileRepo(userProfile())
	profiles.byID["user-1"].Favorites = []string{"late", "gone", "early"}
	svc := NewProfileService(profiles, events, time.Second)

	got, err := svc.ListFavoriteEvents(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, ids(got))

	got, err = svc.ListFavoriteEvents(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProfileService_ListParticipatingEvents(t *testing.T) {
	events := newFakeEventRepo()
	events.seed(&domain.Event{ID: "a", Datetime: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Participants: []string{"user-1"}})
	events.seed(&domain.Event{ID: "b", Datetime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Participants: []string{"user-2", "user-1"}})
	events.seed(&domain.Event{ID: "c", Datetime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Participants: []string{"user-2"}})
	svc := NewProfileService(newFakeProfileRepo(), events, time.Second)

	got, err := svc.ListParticipatingEvents(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestProfileService_SetAdmin(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo(userProfile())
	svc := NewProfileService(profiles, newFakeEventRepo(), time.Second)

	p, err := svc.SetAdmin(ctx, " ANA@example.com", true)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.True(t, profiles.byID["user-1"].IsAdmin)

	p, err = svc.SetAdmin(ctx, "ana@example.com", false)
	require.NoError(t, err)
	assert.False(t, p.IsAdmin)

	_, err = svc.SetAdmin(ctx, "nobody@example.com", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
