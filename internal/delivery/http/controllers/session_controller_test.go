package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbuddy/internal/domain"
)

type sessionBody struct {
	State   string `json:"state"`
	UID     string `json:"uid"`
	IsAdmin bool   `json:"isAdmin"`
}

func TestSessionController_GetSession(t *testing.T) {
	admin := anaProfile()
	admin.IsAdmin = true

	tests := []struct {
		name      string
		uid       string
		profile   *domain.UserProfile
		fakeErr   error
		wantState string
		wantAdmin bool
		wantHook  bool
	}{
		{name: "anonymous", wantState: "unauthenticated"},
		{name: "plain user", uid: "user-123", profile: anaProfile(), wantState: "authenticated_user"},
		{name: "admin", uid: "user-123", profile: admin, wantState: "authenticated_admin", wantAdmin: true},
		{name: "missing profile", uid: "user-123", fakeErr: domain.NewNotFound("get profile"), wantState: "authenticated_user"},
		{name: "lookup failure fails closed", uid: "user-123", fakeErr: errors.New("timeout"), wantState: "authenticated_user", wantHook: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProfileService{profile: tt.profile, err: tt.fakeErr}
			ctrl := NewSessionController(testLogger, fake)
			var hooked bool
			ctrl.OnLookupFailure = func(uid string, err error) { hooked = true }
			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			if tt.uid != "" {
				req = withUser(req, tt.uid)
			}
			rr := httptest.NewRecorder()

			ctrl.GetSession(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var body sessionBody
			decodeEnvelope(t, rr, &body)
			assert.Equal(t, tt.wantState, body.State)
			assert.Equal(t, tt.wantAdmin, body.IsAdmin)
			assert.Equal(t, tt.uid, body.UID)
			assert.Equal(t, tt.wantHook, hooked)
		})
	}
}
