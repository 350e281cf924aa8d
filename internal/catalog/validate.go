package catalog

import (
	"strings"

	"eventbuddy/internal/domain"
)

// ValidateEventForm checks that every required field is present, in form order, and
// parses the date and time. The first missing field is reported. Image URL is only
// required in edit mode.
func ValidateEventForm(form domain.EventForm, mode domain.FormMode) (domain.EventFields, error) {
	required := []struct {
		name  string
		value string
	}{
		{"title", form.Title},
		{"description", form.Description},
		{"location", form.Location},
		{"date", form.DateText},
		{"time", form.TimeText},
	}
	if mode == domain.EditMode {
		required = append(required, struct {
			name  string
			value string
		}{"imageUrl", form.ImageURL})
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.EventFields{}, &domain.ValidationError{Kind: domain.MissingField, Field: f.name}
		}
	}

	dt, err := ParseDateTime(form.DateText, form.TimeText)
	if err != nil {
		return domain.EventFields{}, &domain.ValidationError{Kind: domain.InvalidDateTime, Field: "date", Err: err}
	}
	return domain.EventFields{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Location:    strings.TrimSpace(form.Location),
		Datetime:    dt,
		ImageURL:    strings.TrimSpace(form.ImageURL),
	}, nil
}

// FormFromEvent prefills an edit form from a stored event.
func FormFromEvent(e *domain.Event) domain.EventForm {
	return domain.EventForm{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		DateText:    FormatDate(e.Datetime),
		TimeText:    FormatTime(e.Datetime),
		ImageURL:    e.ImageURL,
	}
}
