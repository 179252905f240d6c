package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/litihq/liti-server/internal/config"
	"github.com/litihq/liti-server/internal/httpapi"
	"github.com/litihq/liti-server/internal/store"
	"github.com/litihq/liti-server/internal/store/docstore"
)

// newTestServer wires a seeded document store under a static dir, the
// way the original deployment laid out data/ next to its assets.
func newTestServer(t *testing.T, upstream string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	staticDir := t.TempDir()
	dataDir := filepath.Join(staticDir, "data")

	st, err := docstore.Open(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, store.EnsureSeeded(context.Background(), st))

	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('liti')"), 0o644))

	cfg := config.Config{
		StoreBackend:      "file",
		DataDir:           dataDir,
		StaticDir:         staticDir,
		OpenRouterBaseURL: upstream,
		OpenRouterTimeout: time.Second,
	}
	return httpapi.NewRouter(st, cfg)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAddScaleEndToEnd(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodPost, "/api/prompts/scales/add", map[string]any{
		"name": "X", "category": "Y", "enabled": true, "instructions": "Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, true, resp["success"])
	id, ok := resp["id"].(float64)
	require.True(t, ok)

	w = doJSON(t, r, http.MethodGet, "/api/prompts/scales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Scales []store.Scale `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	found := false
	for _, sc := range list.Scales {
		if sc.ID == int64(id) {
			found = true
			require.Equal(t, "X", sc.Name)
			require.True(t, sc.Enabled)
		}
	}
	require.True(t, found)
}

func TestHistoryAddAndFetch(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodPost, "/api/history/add", map[string]any{"candidateName": "A"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, true, resp["success"])
	id := int64(resp["id"].(float64))
	require.Equal(t, int64(1), id)

	w = doJSON(t, r, http.MethodGet, "/api/history/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry := decode(t, w)
	require.Equal(t, "A", entry["candidateName"])
	require.Equal(t, float64(1), entry["id"])

	w = doJSON(t, r, http.MethodGet, "/api/history/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Analysis not found", decode(t, w)["error"])
}

func TestDeleteUnknownModelIsNoop(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodGet, "/api/models", nil)
	before := decode(t, w)["models"].([]any)

	w = doJSON(t, r, http.MethodDelete, "/api/models/nonexistent-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(t, r, http.MethodGet, "/api/models", nil)
	after := decode(t, w)["models"].([]any)
	require.Len(t, after, len(before))
}

func TestDeleteModelWithSlashSlug(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodDelete, "/api/models/anthropic/claude-haiku-4.5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/models", nil)
	for _, m := range decode(t, w)["models"].([]any) {
		require.NotEqual(t, "anthropic/claude-haiku-4.5", m.(map[string]any)["id"])
	}
}

func TestResetRestoresDefaultScales(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodPost, "/api/prompts/scales", map[string]any{
		"scales": []map[string]any{{"id": 100, "name": "junk"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/reset-to-defaults", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/prompts/scales", nil)
	var list struct {
		Scales []store.Scale `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, store.DefaultDocument().Scales, list.Scales)
}

func TestUpdateScaleRejectsWrongFieldType(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodPut, "/api/prompts/scales/1", map[string]any{"enabled": "yes"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/prompts/scales", nil)
	var list struct {
		Scales []store.Scale `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, store.DefaultDocument().Scales, list.Scales)
}

func TestSettingsKeyEndpoints(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodGet, "/api/settings/language", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/settings/language", map[string]any{"value": "en"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/settings/language", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, "language", resp["key"])
	require.Equal(t, "en", resp["value"])

	w = doJSON(t, r, http.MethodGet, "/api/settings", nil)
	settings := decode(t, w)["settings"].(map[string]any)
	require.Equal(t, "en", settings["language"])
}

func TestSystemPromptRoundTrip(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodPost, "/api/prompts/system", map[string]any{"systemPrompt": "be brief"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/prompts/system", nil)
	require.Equal(t, "be brief", decode(t, w)["systemPrompt"])
}

func TestSavePromptsKeepsModelsWhenAbsent(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodGet, "/api/models", nil)
	before := decode(t, w)["models"].([]any)
	require.NotEmpty(t, before)

	w = doJSON(t, r, http.MethodPost, "/api/prompts", map[string]any{
		"systemPrompt": "new prompt",
		"scales":       []map[string]any{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/models", nil)
	require.Len(t, decode(t, w)["models"].([]any), len(before))
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodGet, "/api/prompts", nil)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	require.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestStaticServingAndDataDenial(t *testing.T) {
	r := newTestServer(t, "")

	w := doJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "shell")

	w = doJSON(t, r, http.MethodGet, "/app.js", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/data/prompts.json", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/missing.js", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenRouterProxySuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"8"}}]}`))
	}))
	defer upstream.Close()

	r := newTestServer(t, upstream.URL)

	w := doJSON(t, r, http.MethodPost, "/api/test-openrouter", map[string]any{"apiKey": "sk-test"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, true, resp["success"])
	require.Contains(t, resp, "result")
}

func TestOpenRouterProxyRelaysUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient credits"}}`))
	}))
	defer upstream.Close()

	r := newTestServer(t, upstream.URL)

	w := doJSON(t, r, http.MethodPost, "/api/test-openrouter", map[string]any{"apiKey": "sk-test"})
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	resp := decode(t, w)
	require.Equal(t, false, resp["success"])
	require.Contains(t, resp["body"], "insufficient credits")
}
