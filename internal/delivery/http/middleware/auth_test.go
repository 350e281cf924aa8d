package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/domain"
)

// fakeAuthService implements domain.AuthService; only Authenticate is used here.
type fakeAuthService struct {
	domain.AuthService
	identity  domain.Identity
	err       error
	lastToken string
}

func (f *fakeAuthService) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	f.lastToken = token
	if f.err != nil {
		return domain.Identity{}, f.err
	}
	return f.identity, nil
}

var ana = domain.Identity{UID: "user-123", Email: "ana@example.com", SessionID: "sess-1"}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name          string
		authHeader    string
		auth          *fakeAuthService
		wantStatus    int
		wantBodyCode  string
		nextCalled    bool
		wantContextID string
	}{
		{
			name:          "valid token sets context and calls next",
			authHeader:    "Bearer valid-token",
			auth:          &fakeAuthService{identity: ana},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:         "missing authorization header",
			authHeader:   "",
			auth:         &fakeAuthService{identity: ana},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			auth:         &fakeAuthService{identity: ana},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			auth:         &fakeAuthService{identity: ana},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "revoked session",
			authHeader:   "Bearer bad-token",
			auth:         &fakeAuthService{err: errors.Join(errors.New("session revoked"), domain.ErrUnauthorized)},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "expired session",
			authHeader:   "Bearer old-token",
			auth:         &fakeAuthService{err: domain.ErrSessionExpired},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeSessionExpired,
		},
		{
			name:         "session store unreachable",
			authHeader:   "Bearer valid-token",
			auth:         &fakeAuthService{err: domain.NewUnreachable("get session", errors.New("dial tcp"))},
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if id, ok := UserIDFromContext(r.Context()); ok {
					capturedUserID = id
				}
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.auth, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled && tt.wantContextID != "" {
				assert.Equal(t, tt.wantContextID, capturedUserID, "user ID in context")
				assert.Equal(t, "valid-token", tt.auth.lastToken)
			}
			if tt.wantStatus != http.StatusOK && tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name         string
		authHeader   string
		auth         *fakeAuthService
		wantStatus   int
		wantIdentity bool
	}{
		{"no header is anonymous", "", &fakeAuthService{identity: ana}, http.StatusOK, false},
		{"valid token", "Bearer valid-token", &fakeAuthService{identity: ana}, http.StatusOK, true},
		{"expired token is anonymous", "Bearer old", &fakeAuthService{err: domain.ErrSessionExpired}, http.StatusOK, false},
		{"store failure is reported", "Bearer valid-token", &fakeAuthService{err: errors.New("boom")}, http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIdentity bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, gotIdentity = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "http://test/session", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			OptionalAuth(tt.auth, logger)(next)(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantIdentity, gotIdentity)
		})
	}
}
