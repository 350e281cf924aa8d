package controllers

import (
	"log/slog"
	"net/http"

	h "eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/domain"
)

// FavoriteResponse is the response body for POST /me/favorites/{eventID}.
type FavoriteResponse struct {
	Favorites []string `json:"favorites"`
	Favorite  bool     `json:"favorite"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewUserController(logger *slog.Logger, svc domain.ProfileService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := c.Service.GetProfile(r.Context(), callerID(r))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

// ToggleFavorite godoc
// @Summary Add or remove a favorite
// @Description Bookmarks the event, or removes the bookmark if present. The list never holds duplicates.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains favorites and favorite"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /me/favorites/{eventID} [post]
func (c *UserController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorites, favorite, err := c.Service.ToggleFavorite(r.Context(), callerID(r), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, FavoriteResponse{Favorites: favorites, Favorite: favorite})
}

// ListFavorites godoc
// @Summary List favorite events
// @Description The caller's favorite events that still exist, ordered by datetime.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/favorites [get]
func (c *UserController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	uid := callerID(r)
	events, err := c.Service.ListFavoriteEvents(r.Context(), uid)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponses(events, uid))
}

// ListParticipations godoc
// @Summary List events the caller participates in
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/participations [get]
func (c *UserController) ListParticipations(w http.ResponseWriter, r *http.Request) {
	uid := callerID(r)
	events, err := c.Service.ListParticipatingEvents(r.Context(), uid)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponses(events, uid))
}
