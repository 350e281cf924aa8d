package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/delivery/http/middleware"
	"eventbuddy/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var christmas = time.Date(2025, 12, 25, 14, 30, 0, 0, time.UTC)

func lunch() *domain.Event {
	return &domain.Event{
		ID:           "ev-1",
		Title:        "Christmas lunch",
		Description:  "Bring a dish",
		Location:     "Hall A",
		Datetime:     christmas,
		ImageURL:     "https://img.example.com/lunch.png",
		Participants: []string{"user-123", "user-9"},
		CreatedAt:    christmas.Add(-48 * time.Hour),
		UpdatedAt:    christmas.Add(-24 * time.Hour),
	}
}

func withUser(r *http.Request, uid string) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), domain.Identity{UID: uid, Email: uid + "@example.com", SessionID: "sess-" + uid}))
}

// decodeEnvelope decodes the response envelope and, when into is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, into any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw), "response must be valid JSON envelope")
	if into != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, into))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}
}

type fakeSubscription struct {
	mu           sync.Mutex
	unsubscribed bool
}

func (s *fakeSubscription) Unsubscribe() {
	s.mu.Lock()
	s.unsubscribed = true
	s.mu.Unlock()
}

func (s *fakeSubscription) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events []*domain.Event
	event  *domain.Event
	form   *domain.EventForm
	err    error

	participating bool

	lastCallerID string
	lastEventID  string
	lastQuery    string
	lastForm     domain.EventForm

	// streams
	subscribeErr error
	sub          *fakeSubscription
	listFn       func([]*domain.Event, error)
	itemFn       func(*domain.Event, error)
	subscribed   chan struct{}
}

func (f *fakeEventService) CreateEvent(_ context.Context, callerID string, form domain.EventForm) (*domain.Event, error) {
	f.lastCallerID, f.lastForm = callerID, form
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, callerID, eventID string, form domain.EventForm) (*domain.Event, error) {
	f.lastCallerID, f.lastEventID, f.lastForm = callerID, eventID, form
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, callerID, eventID string) error {
	f.lastCallerID, f.lastEventID = callerID, eventID
	return f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID string) (*domain.Event, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) GetEventForm(_ context.Context, callerID, eventID string) (*domain.EventForm, error) {
	f.lastCallerID, f.lastEventID = callerID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.form, nil
}

func (f *fakeEventService) ListEvents(_ context.Context, query string) ([]*domain.Event, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventService) ToggleParticipation(_ context.Context, eventID, userID string) (*domain.Event, bool, error) {
	f.lastEventID, f.lastCallerID = eventID, userID
	if f.err != nil {
		return nil, false, f.err
	}
	return f.event, f.participating, nil
}

func (f *fakeEventService) SubscribeEvents(_ context.Context, query string, fn func([]*domain.Event, error)) (domain.Subscription, error) {
	f.lastQuery = query
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.listFn = fn
	close(f.subscribed)
	return f.sub, nil
}

func (f *fakeEventService) SubscribeEvent(_ context.Context, eventID string, fn func(*domain.Event, error)) (domain.Subscription, error) {
	f.lastEventID = eventID
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.itemFn = fn
	close(f.subscribed)
	return f.sub, nil
}

// fakeProfileService implements domain.ProfileService for handler tests.
type fakeProfileService struct {
	profile   *domain.UserProfile
	events    []*domain.Event
	favorites []string
	favorite  bool
	err       error

	lastUID     string
	lastEventID string
}

func (f *fakeProfileService) GetProfile(_ context.Context, uid string) (*domain.UserProfile, error) {
	f.lastUID = uid
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProfileService) ToggleFavorite(_ context.Context, uid, eventID string) ([]string, bool, error) {
	f.lastUID, f.lastEventID = uid, eventID
	if f.err != nil {
		return nil, false, f.err
	}
	return f.favorites, f.favorite, nil
}

func (f *fakeProfileService) ListFavoriteEvents(_ context.Context, uid string) ([]*domain.Event, error) {
	f.lastUID = uid
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeProfileService) ListParticipatingEvents(_ context.Context, uid string) ([]*domain.Event, error) {
	f.lastUID = uid
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeProfileService) SetAdmin(context.Context, string, bool) (*domain.UserProfile, error) {
	return nil, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	profile *domain.UserProfile
	token   string
	err     error

	lastSignUp   domain.SignUpInput
	lastEmail    string
	lastPassword string
	lastSignOut  domain.Identity
}

func (f *fakeAuthService) SignUp(_ context.Context, in domain.SignUpInput) (*domain.UserProfile, error) {
	f.lastSignUp = in
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeAuthService) SignIn(_ context.Context, email, password string) (string, *domain.UserProfile, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.profile, nil
}

func (f *fakeAuthService) SignOut(_ context.Context, identity domain.Identity) error {
	f.lastSignOut = identity
	return f.err
}

func (f *fakeAuthService) Authenticate(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, f.err
}
