// Package calendar renders the event catalog as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"eventbuddy/internal/domain"
)

const (
	productID = "-//eventbuddy//catalog//EN"
	// floatingLayout writes a DATE-TIME without zone: event datetimes are naive wall-clock values.
	floatingLayout = "20060102T150405"
)

// Feed encodes events as a VCALENDAR with one VEVENT per event.
type Feed struct {
	name string
	now  func() time.Time
}

// NewFeed returns a feed whose calendar carries the given display name.
func NewFeed(name string) *Feed {
	return &Feed{name: name, now: time.Now}
}

// Encode writes events to w in the order given.
func (f *Feed) Encode(w io.Writer, events []*domain.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	if f.name != "" {
		cal.Props.SetText("X-WR-CALNAME", f.name)
	}
	for _, e := range events {
		cal.Children = append(cal.Children, f.toICal(e))
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func (f *Feed) toICal(e *domain.Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID+"@eventbuddy")
	ve.Props.SetText(ical.PropSummary, e.Title)

	stamp := e.UpdatedAt
	if stamp.IsZero() {
		stamp = f.now()
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	start := ical.NewProp(ical.PropDateTimeStart)
	start.Value = e.Datetime.Format(floatingLayout)
	ve.Props.Set(start)

	if e.Description != "" {
		ve.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		ve.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.ImageURL != "" {
		img := ical.NewProp("IMAGE")
		img.Params.Set(ical.ParamValue, "URI")
		img.Value = e.ImageURL
		ve.Props.Set(img)
	}
	return ve
}
