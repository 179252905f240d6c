package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed defaults.json
var defaultsRaw []byte

// Defaults is the static document both backends seed from.
type Defaults struct {
	SystemPrompt       string  `json:"systemPrompt"`
	UserPromptTemplate string  `json:"userPromptTemplate"`
	DefaultModel       string  `json:"defaultModel"`
	Scales             []Scale `json:"scales"`
	Models             []Model `json:"models"`
}

var defaults Defaults

func init() {
	if err := json.Unmarshal(defaultsRaw, &defaults); err != nil {
		panic(fmt.Sprintf("store: embedded defaults.json is invalid: %v", err))
	}
}

// DefaultDocument returns a copy of the parsed defaults document.
func DefaultDocument() Defaults {
	d := defaults
	d.Scales = append([]Scale(nil), defaults.Scales...)
	d.Models = append([]Model(nil), defaults.Models...)
	return d
}

// Settings returns the known setting keys present in the defaults.
func (d Defaults) Settings() map[string]string {
	out := make(map[string]string, 3)
	if d.SystemPrompt != "" {
		out[SettingSystemPrompt] = d.SystemPrompt
	}
	if d.UserPromptTemplate != "" {
		out[SettingUserPromptTemplate] = d.UserPromptTemplate
	}
	if d.DefaultModel != "" {
		out[SettingDefaultModel] = d.DefaultModel
	}
	return out
}

// Seed writes the defaults document into s: known setting keys as
// settings, scales with their explicit ids preserved, models upserted.
// Safe to re-run against a cleared store without producing duplicates.
func Seed(ctx context.Context, s Store) error {
	d := DefaultDocument()
	for k, v := range d.Settings() {
		if err := s.PutSetting(ctx, k, v); err != nil {
			return fmt.Errorf("seed setting %s: %w", k, err)
		}
	}
	if err := s.ReplaceScales(ctx, d.Scales); err != nil {
		return fmt.Errorf("seed scales: %w", err)
	}
	for _, m := range d.Models {
		if err := s.UpsertModel(ctx, m); err != nil {
			return fmt.Errorf("seed model %s: %w", m.ID, err)
		}
	}
	return nil
}

// EnsureSeeded seeds s on first initialization, detected by an empty
// scale set. History is left alone.
func EnsureSeeded(ctx context.Context, s Store) error {
	scales, err := s.ListScales(ctx)
	if err != nil {
		return err
	}
	if len(scales) > 0 {
		return nil
	}
	return Seed(ctx, s)
}
