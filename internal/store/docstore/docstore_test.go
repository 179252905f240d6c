package docstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/litihq/liti-server/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	return s, dir
}

func TestCorruptPromptsFileLoadsAsDefault(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.json"), []byte("{not json"), 0o644))

	scales, err := s.ListScales(ctx)
	require.NoError(t, err)
	require.Empty(t, scales)

	models, err := s.ListModels(ctx)
	require.NoError(t, err)
	require.Empty(t, models)

	// the next write replaces the corrupt file with a valid document
	require.NoError(t, s.PutSetting(ctx, "language", "en"))
	v, err := s.GetSetting(ctx, "language")
	require.NoError(t, err)
	require.Equal(t, "en", v)
}

func TestCorruptHistoryFileLoadsAsEmpty(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.json"), []byte("[[["), 0o644))

	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	id, err := s.AddHistoryEntry(ctx, store.Entry{"candidateName": "A"})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestMissingFilesAreNotAnError(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	scales, err := s.ListScales(ctx)
	require.NoError(t, err)
	require.Empty(t, scales)

	entries, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	settings, err := s.ListSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, "", settings[store.SettingSystemPrompt])
}

// The on-disk layout keeps systemPrompt as a top-level field of
// prompts.json; other settings live under "settings".
func TestDocumentLayout(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutSetting(ctx, store.SettingSystemPrompt, "analyze this"))
	require.NoError(t, s.PutSetting(ctx, "defaultModel", "acme/model-1"))
	require.NoError(t, s.ReplaceScales(ctx, []store.Scale{{ID: 1, Name: "A"}}))

	b, err := os.ReadFile(filepath.Join(dir, "prompts.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Equal(t, "analyze this", doc["systemPrompt"])
	require.Len(t, doc["scales"], 1)
	settings, ok := doc["settings"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "acme/model-1", settings["defaultModel"])
	require.NotContains(t, settings, "systemPrompt")
}

func TestHistoryFileKeepsNewestFirst(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddHistoryEntry(ctx, store.Entry{"candidateName": "first"})
	require.NoError(t, err)
	_, err = s.AddHistoryEntry(ctx, store.Entry{"candidateName": "second"})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "history.json"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 2)
	require.Equal(t, "second", raw[0]["candidateName"])
	require.Equal(t, "first", raw[1]["candidateName"])
}

func TestAddScaleHonorsExplicitID(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddScale(ctx, store.Scale{ID: 42, Name: "Explicit"})
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	// re-adding the same id replaces instead of duplicating
	_, err = s.AddScale(ctx, store.Scale{ID: 42, Name: "Replaced"})
	require.NoError(t, err)

	scales, err := s.ListScales(ctx)
	require.NoError(t, err)
	require.Len(t, scales, 1)
	require.Equal(t, "Replaced", scales[0].Name)

	id, err = s.AddScale(ctx, store.Scale{Name: "Generated"})
	require.NoError(t, err)
	require.Equal(t, int64(43), id)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceScales(ctx, []store.Scale{{ID: 1, Name: "A"}}))
	_, err := s.AddHistoryEntry(ctx, store.Entry{"x": "y"})
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		require.NotContains(t, f.Name(), ".tmp")
	}
}
