package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateProbeSendsFixedPrompt(t *testing.T) {
	var got openRouterChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"7"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClient(srv.URL, time.Second)
	raw, err := c.RateProbe(context.Background(), "sk-test", "")
	require.NoError(t, err)

	require.Equal(t, DefaultProbeModel, got.Model)
	require.Equal(t, 10, got.MaxTokens)
	require.Equal(t, 0.1, got.Temperature)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)

	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Contains(t, result, "choices")
}

func TestRateProbeRelaysUpstreamStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClient(srv.URL, time.Second)
	_, err := c.RateProbe(context.Background(), "sk-bad", "acme/model")
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	require.Contains(t, upstream.Body, "invalid api key")
}

func TestRateProbeTransportFailureIsNotUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c := NewOpenRouterClient(srv.URL, time.Second)
	_, err := c.RateProbe(context.Background(), "sk-test", "acme/model")
	require.Error(t, err)

	var upstream *UpstreamError
	require.False(t, errors.As(err, &upstream))
}

func TestRateProbeRequiresAPIKey(t *testing.T) {
	c := NewOpenRouterClient("http://127.0.0.1:0", time.Second)
	_, err := c.RateProbe(context.Background(), "  ", "acme/model")
	require.Error(t, err)
}
