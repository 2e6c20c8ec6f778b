package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// NewArtifactRefresher picks the refresher for config: a webhook when a
// refresh url is configured, otherwise a refresher that only logs.
func NewArtifactRefresher(config *domain.ArtifactsConfig, log *zap.Logger) domain.ArtifactRefresher {
	if config.RefreshURL == "" {
		return NewLogRefresher(log)
	}
	return NewWebhookRefresher(config.RefreshURL, log)
}

// WebhookRefresher posts the artifact source list to the host
type WebhookRefresher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookRefresher creates a refresher posting to url
func NewWebhookRefresher(url string, log *zap.Logger) *WebhookRefresher {
	return &WebhookRefresher{
		url:    url,
		client: &http.Client{},
		logger: logger.OrNop(log),
	}
}

type refreshRequest struct {
	Sources []domain.ArtifactSource `json:"sources"`
}

// Refresh asks the host to rescan its artifacts
func (r *WebhookRefresher) Refresh(ctx context.Context, sources []domain.ArtifactSource) error {
	if sources == nil {
		sources = []domain.ArtifactSource{}
	}
	body, err := json.Marshal(refreshRequest{Sources: sources})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("refresh rejected: %s", resp.Status)
	}

	r.logger.Debug("Artifact refresh delivered",
		zap.String("url", r.url),
		zap.Int("sources", len(sources)))
	return nil
}

// LogRefresher records refresh requests when no host endpoint is configured
type LogRefresher struct {
	logger *zap.Logger
}

// NewLogRefresher creates a new log refresher
func NewLogRefresher(log *zap.Logger) *LogRefresher {
	return &LogRefresher{logger: logger.OrNop(log)}
}

// Refresh logs the request
func (r *LogRefresher) Refresh(_ context.Context, sources []domain.ArtifactSource) error {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	r.logger.Info("Artifact refresh requested", zap.Strings("sources", names))
	return nil
}
