// Package store defines the resource access layer shared by both
// persistence backends: JSON documents on disk (docstore) and a
// relational database (dbstore).
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by id or key matches nothing.
// Deletes of absent ids are a no-op success, not an error.
var ErrNotFound = errors.New("not found")

// ErrInvalidField is returned when a partial update carries a value of
// the wrong type for a known column.
var ErrInvalidField = errors.New("invalid field")

// Setting keys seeded from the defaults document.
const (
	SettingSystemPrompt       = "systemPrompt"
	SettingUserPromptTemplate = "userPromptTemplate"
	SettingDefaultModel       = "defaultModel"
)

// Scale is a configurable rating dimension. Listed ascending by id.
type Scale struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Enabled      bool   `json:"enabled"`
	Instructions string `json:"instructions"`
}

// Model is AI model metadata keyed by a caller-supplied slug,
// e.g. "anthropic/claude-haiku-4.5".
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Entry is one analysis result. The payload is arbitrary JSON;
// "id" and "createdAt" are reserved and assigned by the backend.
type Entry map[string]any

// ID returns the entry id if present. JSON decoding yields float64
// numbers, so both forms are accepted.
func (e Entry) ID() (int64, bool) {
	switch v := e["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// ScaleUpdate filters a partial update to the mutable scale columns.
// Unknown keys are dropped and "id" stays immutable; a known key with a
// value of the wrong type fails with ErrInvalidField. Both backends run
// updates through this so the observable contract is identical.
func ScaleUpdate(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "name", "category", "instructions":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidField, k)
			}
			out[k] = s
		case "enabled":
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: enabled must be a boolean", ErrInvalidField)
			}
			out[k] = b
		}
	}
	return out, nil
}

// Clone returns a shallow copy so stored entries never alias caller maps.
func (e Entry) Clone() Entry {
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Store is the uniform contract over whichever backend is configured.
// Lists never fail on absent storage; they return empty results.
type Store interface {
	ListSettings(ctx context.Context) (map[string]string, error)
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error

	ListScales(ctx context.Context) ([]Scale, error)
	GetScale(ctx context.Context, id int64) (Scale, error)
	ReplaceScales(ctx context.Context, scales []Scale) error
	AddScale(ctx context.Context, s Scale) (int64, error)
	UpdateScale(ctx context.Context, id int64, fields map[string]any) error
	DeleteScale(ctx context.Context, id int64) error

	ListModels(ctx context.Context) ([]Model, error)
	ReplaceModels(ctx context.Context, models []Model) error
	UpsertModel(ctx context.Context, m Model) error
	DeleteModel(ctx context.Context, id string) error

	ListHistory(ctx context.Context) ([]Entry, error)
	GetHistoryEntry(ctx context.Context, id int64) (Entry, error)
	ReplaceHistory(ctx context.Context, entries []Entry) error
	AddHistoryEntry(ctx context.Context, e Entry) (int64, error)
	DeleteHistoryEntry(ctx context.Context, id int64) error

	// Reset clears all four resource kinds and reseeds from the
	// defaults document. Idempotent.
	Reset(ctx context.Context) error

	Close() error
}
