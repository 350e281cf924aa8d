package controllers

import (
	"context"
	"log/slog"
	"net/http"

	h "eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/delivery/http/middleware"
	"eventbuddy/internal/domain"
	"eventbuddy/internal/session"
)

// profileLookup adapts ProfileService to the gate's lookup.
type profileLookup struct {
	svc domain.ProfileService
}

func (p profileLookup) GetByID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	return p.svc.GetProfile(ctx, uid)
}

type SessionController struct {
	Logger   *slog.Logger
	Profiles domain.ProfileService
	// OnLookupFailure is told when a profile lookup fails and the caller is
	// resolved as a plain user.
	OnLookupFailure session.LookupFailureFunc
}

func NewSessionController(logger *slog.Logger, profiles domain.ProfileService) *SessionController {
	return &SessionController{
		Logger:   logger,
		Profiles: profiles,
	}
}

// GetSession godoc
// @Summary Resolve the caller's session
// @Description Returns unauthenticated, authenticated_user or authenticated_admin. Admin is granted only when the profile exists and isAdmin is true.
// @Tags auth
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} helpers.APIResponse "data contains state, uid and isAdmin"
// @Router /session [get]
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONSuccess(w, http.StatusOK, domain.SessionView{State: domain.Unauthenticated})
		return
	}
	opts := []session.Option{session.WithLogger(c.Logger)}
	if c.OnLookupFailure != nil {
		opts = append(opts, session.WithLookupFailureHook(c.OnLookupFailure))
	}
	view := session.Resolve(r.Context(), profileLookup{svc: c.Profiles}, &identity, opts...)
	h.WriteJSONSuccess(w, http.StatusOK, view)
}
