// Package docstore persists resources as whole JSON documents:
// prompts.json for settings, scales and models, history.json for
// analysis results (newest first).
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/litihq/liti-server/internal/store"
)

const (
	promptsFile = "prompts.json"
	historyFile = "history.json"
)

// document is the full contents of prompts.json. The system prompt is a
// top-level field; all other settings live under "settings".
type document struct {
	SystemPrompt string            `json:"systemPrompt"`
	Scales       []store.Scale     `json:"scales"`
	Models       []store.Model     `json:"models"`
	Settings     map[string]string `json:"settings,omitempty"`
}

type Store struct {
	mu      sync.Mutex
	dataDir string
}

var _ store.Store = (*Store)(nil)

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create data dir: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

func (s *Store) Close() error { return nil }

// loadDocument reads prompts.json. A missing or unparseable file yields
// the zero document; corruption never surfaces past this boundary.
func (s *Store) loadDocument() document {
	doc := document{Scales: []store.Scale{}, Models: []store.Model{}}
	b, err := os.ReadFile(filepath.Join(s.dataDir, promptsFile))
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{Scales: []store.Scale{}, Models: []store.Model{}}
	}
	if doc.Scales == nil {
		doc.Scales = []store.Scale{}
	}
	if doc.Models == nil {
		doc.Models = []store.Model{}
	}
	return doc
}

func (s *Store) loadHistory() []store.Entry {
	entries := []store.Entry{}
	b, err := os.ReadFile(filepath.Join(s.dataDir, historyFile))
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return []store.Entry{}
	}
	return entries
}

// writeFile replaces name atomically so a concurrent reader never sees a
// torn document.
func (s *Store) writeFile(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) saveDocument(doc document) error {
	return s.writeFile(promptsFile, doc)
}

func (s *Store) saveHistory(entries []store.Entry) error {
	return s.writeFile(historyFile, entries)
}

// Settings

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	out := make(map[string]string, len(doc.Settings)+1)
	for k, v := range doc.Settings {
		out[k] = v
	}
	out[store.SettingSystemPrompt] = doc.SystemPrompt
	return out, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	if key == store.SettingSystemPrompt {
		return doc.SystemPrompt, nil
	}
	v, ok := doc.Settings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	if key == store.SettingSystemPrompt {
		doc.SystemPrompt = value
	} else {
		if doc.Settings == nil {
			doc.Settings = map[string]string{}
		}
		doc.Settings[key] = value
	}
	return s.saveDocument(doc)
}

// Scales

func (s *Store) ListScales(ctx context.Context) ([]store.Scale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	out := append([]store.Scale(nil), doc.Scales...)
	sortScales(out)
	return out, nil
}

func (s *Store) GetScale(ctx context.Context, id int64) (store.Scale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.loadDocument().Scales {
		if sc.ID == id {
			return sc, nil
		}
	}
	return store.Scale{}, store.ErrNotFound
}

func (s *Store) ReplaceScales(ctx context.Context, scales []store.Scale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	doc.Scales = append([]store.Scale{}, scales...)
	return s.saveDocument(doc)
}

func (s *Store) AddScale(ctx context.Context, sc store.Scale) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	if sc.ID == 0 {
		var max int64
		for _, existing := range doc.Scales {
			if existing.ID > max {
				max = existing.ID
			}
		}
		sc.ID = max + 1
	}
	replaced := false
	for i, existing := range doc.Scales {
		if existing.ID == sc.ID {
			doc.Scales[i] = sc
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Scales = append(doc.Scales, sc)
	}
	if err := s.saveDocument(doc); err != nil {
		return 0, err
	}
	return sc.ID, nil
}

func (s *Store) UpdateScale(ctx context.Context, id int64, fields map[string]any) error {
	updates, err := store.ScaleUpdate(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	for i, sc := range doc.Scales {
		if sc.ID != id {
			continue
		}
		doc.Scales[i] = applyScaleUpdate(sc, updates)
		return s.saveDocument(doc)
	}
	return store.ErrNotFound
}

func (s *Store) DeleteScale(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	kept := doc.Scales[:0]
	for _, sc := range doc.Scales {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	doc.Scales = kept
	return s.saveDocument(doc)
}

// Models

func (s *Store) ListModels(ctx context.Context) ([]store.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Model(nil), s.loadDocument().Models...), nil
}

func (s *Store) ReplaceModels(ctx context.Context, models []store.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	doc.Models = append([]store.Model{}, models...)
	return s.saveDocument(doc)
}

func (s *Store) UpsertModel(ctx context.Context, m store.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	replaced := false
	for i, existing := range doc.Models {
		if existing.ID == m.ID {
			doc.Models[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Models = append(doc.Models, m)
	}
	return s.saveDocument(doc)
}

func (s *Store) DeleteModel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.loadDocument()
	kept := doc.Models[:0]
	for _, m := range doc.Models {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	doc.Models = kept
	return s.saveDocument(doc)
}

// History

func (s *Store) ListHistory(ctx context.Context) ([]store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.loadHistory()
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out, nil
}

func (s *Store) GetHistoryEntry(ctx context.Context, id int64) (store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.loadHistory() {
		if got, ok := e.ID(); ok && got == id {
			return e.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ReplaceHistory(ctx context.Context, entries []store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := maxHistoryID(entries) + 1
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		c := e.Clone()
		if _, ok := c.ID(); !ok {
			c["id"] = next
			next++
		}
		out[i] = c
	}
	return s.saveHistory(out)
}

func (s *Store) AddHistoryEntry(ctx context.Context, e store.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.loadHistory()
	c := e.Clone()
	id, ok := c.ID()
	if !ok {
		id = maxHistoryID(entries) + 1
		c["id"] = id
	}
	if _, ok := c["createdAt"]; !ok {
		c["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	// newest first
	entries = append([]store.Entry{c}, entries...)
	if err := s.saveHistory(entries); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DeleteHistoryEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.loadHistory()
	kept := entries[:0]
	for _, e := range entries {
		if got, ok := e.ID(); ok && got == id {
			continue
		}
		kept = append(kept, e)
	}
	return s.saveHistory(kept)
}

// Reset

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := store.DefaultDocument()
	doc := document{
		SystemPrompt: d.SystemPrompt,
		Scales:       d.Scales,
		Models:       d.Models,
		Settings:     map[string]string{},
	}
	for k, v := range d.Settings() {
		if k != store.SettingSystemPrompt {
			doc.Settings[k] = v
		}
	}
	if err := s.saveDocument(doc); err != nil {
		return err
	}
	return s.saveHistory([]store.Entry{})
}

func sortScales(scales []store.Scale) {
	sort.Slice(scales, func(i, j int) bool { return scales[i].ID < scales[j].ID })
}

// applyScaleUpdate expects fields already filtered by store.ScaleUpdate.
func applyScaleUpdate(sc store.Scale, fields map[string]any) store.Scale {
	if v, ok := fields["name"].(string); ok {
		sc.Name = v
	}
	if v, ok := fields["category"].(string); ok {
		sc.Category = v
	}
	if v, ok := fields["enabled"].(bool); ok {
		sc.Enabled = v
	}
	if v, ok := fields["instructions"].(string); ok {
		sc.Instructions = v
	}
	return sc
}

func maxHistoryID(entries []store.Entry) int64 {
	var max int64
	for _, e := range entries {
		if id, ok := e.ID(); ok && id > max {
			max = id
		}
	}
	return max
}
