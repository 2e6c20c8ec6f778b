package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/dltrack/internal/domain"
)

func TestWebhookRefresher_PostsSources(t *testing.T) {
	var got refreshRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	refresher := NewArtifactRefresher(&domain.ArtifactsConfig{RefreshURL: server.URL}, nil)
	require.IsType(t, &WebhookRefresher{}, refresher)

	sources := []domain.ArtifactSource{{Name: "RWKV-4-World-0.1B", URL: "https://example.com/a.pth"}}
	require.NoError(t, refresher.Refresh(context.Background(), sources))
	assert.Equal(t, sources, got.Sources)
}

func TestWebhookRefresher_EmptySources(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer server.Close()

	require.NoError(t, NewWebhookRefresher(server.URL, nil).Refresh(context.Background(), nil))
	assert.JSONEq(t, "[]", string(raw["sources"]))
}

func TestWebhookRefresher_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewWebhookRefresher(server.URL, nil).Refresh(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestLogRefresher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	refresher := NewArtifactRefresher(&domain.ArtifactsConfig{}, zap.New(core))
	require.IsType(t, &LogRefresher{}, refresher)

	require.NoError(t, refresher.Refresh(context.Background(), []domain.ArtifactSource{{Name: "a"}, {Name: "b"}}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Artifact refresh requested", logs.All()[0].Message)
}
