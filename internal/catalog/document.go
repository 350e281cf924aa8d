package catalog

import (
	"fmt"
	"strings"

	"eventbuddy/internal/domain"
)

// DecodeEventDocument reads an exported event document, such as a row of the legacy
// events collection, into editable fields and the participant list. Duplicate
// participants are dropped keeping the first occurrence.
func DecodeEventDocument(doc map[string]any) (domain.EventFields, []string, error) {
	var fields domain.EventFields
	var ok bool
	if fields.Title, ok = stringField(doc, "title"); !ok {
		return fields, nil, &domain.ValidationError{Kind: domain.MissingField, Field: "title"}
	}
	if fields.Description, ok = stringField(doc, "description"); !ok {
		return fields, nil, &domain.ValidationError{Kind: domain.MissingField, Field: "description"}
	}
	if fields.Location, ok = stringField(doc, "location"); !ok {
		return fields, nil, &domain.ValidationError{Kind: domain.MissingField, Field: "location"}
	}
	raw, present := doc["datetime"]
	if !present {
		return fields, nil, &domain.ValidationError{Kind: domain.MissingField, Field: "datetime"}
	}
	if fields.Datetime, ok = NormalizeInstant(raw); !ok {
		return fields, nil, &domain.ValidationError{
			Kind:  domain.InvalidDateTime,
			Field: "datetime",
			Err:   fmt.Errorf("unsupported datetime value %v", raw),
		}
	}
	fields.Datetime = fields.Datetime.UTC()
	fields.ImageURL, _ = stringField(doc, "imageUrl")

	var participants []string
	if list, isList := doc["participants"].([]any); isList {
		seen := make(map[string]struct{}, len(list))
		for _, p := range list {
			id, isString := p.(string)
			if !isString || id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			participants = append(participants, id)
		}
	}
	if participants == nil {
		participants = []string{}
	}
	return fields, participants, nil
}

func stringField(doc map[string]any, key string) (string, bool) {
	s, ok := doc[key].(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}
