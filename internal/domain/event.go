package domain

import (
	"context"
	"slices"
	"time"
)

// Event represents an activity listed in the catalog.
// swagger:model Event
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Datetime     time.Time `json:"datetime"`
	ImageURL     string    `json:"imageUrl"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EventFields holds the admin-editable fields of an Event.
type EventFields struct {
	Title       string
	Description string
	Location    string
	Datetime    time.Time
	ImageURL    string
}

// NewEvent returns a new Event with no participants. ID is typically set by the repository on create.
func NewEvent(fields EventFields, createdAt, updatedAt time.Time) *Event {
	e := &Event{
		Participants: []string{},
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	e.Apply(fields)
	return e
}

// Apply overwrites the editable fields of e.
func (e *Event) Apply(fields EventFields) {
	e.Title = fields.Title
	e.Description = fields.Description
	e.Location = fields.Location
	e.Datetime = fields.Datetime
	e.ImageURL = fields.ImageURL
}

// Fields returns the editable fields of e.
func (e *Event) Fields() EventFields {
	return EventFields{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Datetime:    e.Datetime,
		ImageURL:    e.ImageURL,
	}
}

// HasParticipant reports whether userID is in the participant list.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Participants = slices.Clone(e.Participants)
	if cp.Participants == nil {
		cp.Participants = []string{}
	}
	return &cp
}

// EventForm is the admin form for creating or editing an event, as typed by the user.
// swagger:model EventForm
type EventForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	DateText    string `json:"date"`
	TimeText    string `json:"time"`
	ImageURL    string `json:"imageUrl"`
}

// FormMode selects which fields an EventForm must carry.
type FormMode int

const (
	// CreateMode allows an empty image URL.
	CreateMode FormMode = iota
	// EditMode requires every field, including the image URL.
	EditMode
)

// Subscription is a live query registered with a repository. Unsubscribe releases it
// and is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, fields EventFields) (string, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns every event ordered by ascending datetime.
	List(ctx context.Context) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
	ListByParticipant(ctx context.Context, userID string) ([]*Event, error)
	Update(ctx context.Context, id string, fields EventFields) error
	UpdateParticipants(ctx context.Context, id string, participants []string) error
	Delete(ctx context.Context, id string) error

	// SubscribeEvents calls fn with the full ordered event list now and after every change,
	// or with a nil list and the error when a load fails.
	SubscribeEvents(ctx context.Context, fn func([]*Event, error)) (Subscription, error)
	// SubscribeEvent calls fn with the latest state of one event, or with ErrNotFound once it is gone.
	SubscribeEvent(ctx context.Context, id string, fn func(*Event, error)) (Subscription, error)
}

// EventService defines the business logic for browsing and managing events.
type EventService interface {
	CreateEvent(ctx context.Context, callerID string, form EventForm) (*Event, error)
	UpdateEvent(ctx context.Context, callerID, eventID string, form EventForm) (*Event, error)
	DeleteEvent(ctx context.Context, callerID, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetEventForm(ctx context.Context, callerID, eventID string) (*EventForm, error)
	ListEvents(ctx context.Context, query string) ([]*Event, error)
	// ToggleParticipation adds or removes userID from the event and reports whether the user now participates.
	ToggleParticipation(ctx context.Context, eventID, userID string) (*Event, bool, error)
	SubscribeEvents(ctx context.Context, query string, fn func([]*Event, error)) (Subscription, error)
	SubscribeEvent(ctx context.Context, eventID string, fn func(*Event, error)) (Subscription, error)
}
