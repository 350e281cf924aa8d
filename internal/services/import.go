package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"eventbuddy/internal/catalog"
	"eventbuddy/internal/domain"
)

// ImportSkip records a document that could not be imported.
type ImportSkip struct {
	Key    string
	Reason string
}

// ImportResult summarises one import run. IDs maps each imported document key to
// the id it was stored under.
type ImportResult struct {
	Imported []string
	Skipped  []ImportSkip
	IDs      map[string]string
}

// EventImporter copies exported event documents into the event repository.
type EventImporter struct {
	events         domain.EventRepository
	contextTimeout time.Duration
	logger         *slog.Logger
}

func NewEventImporter(events domain.EventRepository, timeout time.Duration, logger *slog.Logger) *EventImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventImporter{events: events, contextTimeout: timeout, logger: logger}
}

// Import reads a JSON export, either an array of documents or an object keyed by
// document id, and creates one event per valid document. Invalid documents are
// skipped; a repository failure stops the run.
func (i *EventImporter) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	result := ImportResult{IDs: make(map[string]string)}
	keys, docs, err := readExport[map[string]any](r)
	if err != nil {
		return result, err
	}
	for idx, doc := range docs {
		key := keys[idx]
		fields, participants, err := catalog.DecodeEventDocument(doc)
		if err != nil {
			result.Skipped = append(result.Skipped, ImportSkip{Key: key, Reason: err.Error()})
			i.logger.WarnContext(ctx, "skipping event document", "key", key, "error", err)
			continue
		}
		id, err := i.importOne(ctx, fields, participants)
		if err != nil {
			return result, fmt.Errorf("import %s: %w", key, err)
		}
		result.Imported = append(result.Imported, id)
		result.IDs[key] = id
	}
	return result, nil
}

func (i *EventImporter) importOne(ctx context.Context, fields domain.EventFields, participants []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.contextTimeout)
	defer cancel()

	id, err := i.events.Create(ctx, fields)
	if err != nil {
		return "", err
	}
	if len(participants) > 0 {
		if err := i.events.UpdateParticipants(ctx, id, participants); err != nil {
			return id, err
		}
	}
	return id, nil
}

// readExport decodes a JSON export holding either an array of documents or an
// object keyed by document id. Keyed documents come back in key order.
func readExport[T any](r io.Reader) ([]string, []T, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read export: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil, nil
	}
	if raw[0] == '[' {
		var docs []T
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, nil, fmt.Errorf("decode export: %w", err)
		}
		keys := make([]string, len(docs))
		for idx := range docs {
			keys[idx] = fmt.Sprintf("#%d", idx)
		}
		return keys, docs, nil
	}
	var byID map[string]T
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, nil, fmt.Errorf("decode export: %w", err)
	}
	keys := slices.Sorted(maps.Keys(byID))
	docs := make([]T, len(keys))
	for idx, k := range keys {
		docs[idx] = byID[k]
	}
	return keys, docs, nil
}

// ProfileImporter copies favorites and admin flags from exported profile
// documents onto users who have registered again under the same email.
type ProfileImporter struct {
	profiles       domain.UserProfileRepository
	contextTimeout time.Duration
	logger         *slog.Logger
}

func NewProfileImporter(profiles domain.UserProfileRepository, timeout time.Duration, logger *slog.Logger) *ProfileImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileImporter{profiles: profiles, contextTimeout: timeout, logger: logger}
}

// Import reads a profile export in the same shapes EventImporter accepts. Favorite
// ids found in eventIDs are translated to their imported ids; other ids are kept.
// Imported favorites are appended to the user's current ones without duplicates,
// and an exported admin flag is granted but never revoked.
func (i *ProfileImporter) Import(ctx context.Context, r io.Reader, eventIDs map[string]string) (ImportResult, error) {
	var result ImportResult
	keys, docs, err := readExport[domain.UserProfile](r)
	if err != nil {
		return result, err
	}
	for idx, doc := range docs {
		key := keys[idx]
		email := normalizeEmail(doc.Email)
		if email == "" {
			result.Skipped = append(result.Skipped, ImportSkip{Key: key, Reason: "missing email"})
			continue
		}
		uid, err := i.importOne(ctx, email, doc, eventIDs)
		if errors.Is(err, domain.ErrNotFound) {
			result.Skipped = append(result.Skipped, ImportSkip{Key: key, Reason: "no user registered as " + email})
			i.logger.WarnContext(ctx, "skipping profile document", "key", key, "email", email)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("import %s: %w", key, err)
		}
		result.Imported = append(result.Imported, uid)
	}
	return result, nil
}

func (i *ProfileImporter) importOne(ctx context.Context, email string, doc domain.UserProfile, eventIDs map[string]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.contextTimeout)
	defer cancel()

	profile, err := i.profiles.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	favorites := slices.Clone(profile.Favorites)
	for _, id := range doc.Favorites {
		if mapped, ok := eventIDs[id]; ok {
			id = mapped
		}
		if !slices.Contains(favorites, id) {
			favorites = append(favorites, id)
		}
	}
	if !slices.Equal(favorites, profile.Favorites) {
		if err := i.profiles.UpdateFavorites(ctx, profile.UID, favorites); err != nil {
			return "", err
		}
	}
	if doc.IsAdmin && !profile.IsAdmin {
		if err := i.profiles.SetAdmin(ctx, profile.UID, true); err != nil {
			return "", err
		}
	}
	return profile.UID, nil
}
