package controllers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"eventbuddy/internal/adapters/calendar"
	"eventbuddy/internal/catalog"
	h "eventbuddy/internal/delivery/http/helpers"
	"eventbuddy/internal/delivery/http/middleware"
	"eventbuddy/internal/domain"
)

// EventResponse is an event as returned by the API. Date and Time are the
// datetime in the display locale (DD/MM/YYYY and HH:MM).
// swagger:model EventResponse
type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Datetime         time.Time `json:"datetime"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	ImageURL         string    `json:"imageUrl"`
	Participants     []string  `json:"participants"`
	ParticipantCount int       `json:"participantCount"`
	Participating    bool      `json:"participating"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewEventResponse builds the response for e as seen by the caller uid.
func NewEventResponse(e *domain.Event, uid string) EventResponse {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Location:         e.Location,
		Datetime:         e.Datetime,
		Date:             catalog.FormatDate(e.Datetime),
		Time:             catalog.FormatTime(e.Datetime),
		ImageURL:         e.ImageURL,
		Participants:     participants,
		ParticipantCount: len(participants),
		Participating:    uid != "" && e.HasParticipant(uid),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// NewEventResponses maps events in order.
func NewEventResponses(events []*domain.Event, uid string) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e, uid))
	}
	return out
}

// EventFormRequest is the body for POST /events and PUT /events/{eventID}. Date is
// DD/MM/YYYY and time is HH:MM. imageUrl may be empty on create only.
type EventFormRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ImageURL    string `json:"imageUrl"`
}

func (f EventFormRequest) toForm() domain.EventForm {
	return domain.EventForm{
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		DateText:    f.Date,
		TimeText:    f.Time,
		ImageURL:    f.ImageURL,
	}
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Items      []EventResponse  `json:"items"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// ParticipationResponse is the response body for POST /events/{eventID}/participation.
type ParticipationResponse struct {
	Event         EventResponse `json:"event"`
	Participating bool          `json:"participating"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Feed    *calendar.Feed
}

func NewEventController(logger *slog.Logger, svc domain.EventService, feed *calendar.Feed) *EventController {
	if feed == nil {
		feed = calendar.NewFeed("EventBuddy")
	}
	return &EventController{
		Logger:  logger,
		Service: svc,
		Feed:    feed,
	}
}

func callerID(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}

// ListEvents godoc
// @Summary List events
// @Description Events whose title contains q (case-insensitive), ordered by ascending datetime, paginated.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param q query string false "Title search"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	events, err := c.Service.ListEvents(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	page, meta := h.Paginate(events, params)
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      NewEventResponses(page, callerID(r)),
		Pagination: meta,
	})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponse(event, callerID(r)))
}

// GetEventForm godoc
// @Summary Get the edit form for an event
// @Description Returns the event's editable fields with date and time in the display locale. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains title, description, location, date, time, imageUrl"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/form [get]
func (c *EventController) GetEventForm(w http.ResponseWriter, r *http.Request) {
	form, err := c.Service.GetEventForm(r.Context(), callerID(r), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, form)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admin only. title, description, location, date and time are required; imageUrl is optional.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventFormRequest true "Event form"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventFormRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), callerID(r), req.toForm())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, NewEventResponse(event, callerID(r)))
}

// UpdateEvent godoc
// @Summary Edit an event
// @Description Admin only. Every field including imageUrl is required. Participants are kept.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body EventFormRequest true "Event form"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventFormRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), callerID(r), r.PathValue("eventID"), req.toForm())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponse(event, callerID(r)))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Admin only. Irreversible.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "event deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), callerID(r), r.PathValue("eventID")); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleParticipation godoc
// @Summary Join or leave an event
// @Description Adds the caller to the participants, or removes them if already present.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event and participating"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/participation [post]
func (c *EventController) ToggleParticipation(w http.ResponseWriter, r *http.Request) {
	uid := callerID(r)
	event, participating, err := c.Service.ToggleParticipation(r.Context(), r.PathValue("eventID"), uid)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ParticipationResponse{
		Event:         NewEventResponse(event, uid),
		Participating: participating,
	})
}

// Calendar godoc
// @Summary iCalendar feed
// @Description Every event matching q as a VEVENT, ordered by datetime.
// @Tags events
// @Produce text/calendar
// @Security BearerAuth
// @Param q query string false "Title search"
// @Success 200 {string} string "text/calendar body"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/calendar.ics [get]
func (c *EventController) Calendar(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var buf bytes.Buffer
	if err := c.Feed.Encode(&buf, events); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="eventbuddy.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
