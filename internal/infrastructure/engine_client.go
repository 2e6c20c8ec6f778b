package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// EngineClient sends control commands to the transfer engine over HTTP.
// The engine answers asynchronously by pushing status events.
type EngineClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewEngineClient creates a client for the engine listening at baseURL
func NewEngineClient(config *domain.EngineConfig, log *zap.Logger) *EngineClient {
	return &EngineClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  &http.Client{Timeout: config.CommandTimeout},
		logger:  logger.OrNop(log),
	}
}

type engineCommand struct {
	URL string `json:"url"`
}

// PauseDownload asks the engine to pause url
func (c *EngineClient) PauseDownload(ctx context.Context, url string) error {
	return c.post(ctx, "pause", url)
}

// ContinueDownload asks the engine to resume url
func (c *EngineClient) ContinueDownload(ctx context.Context, url string) error {
	return c.post(ctx, "continue", url)
}

func (c *EngineClient) post(ctx context.Context, command, url string) error {
	body, err := json.Marshal(engineCommand{URL: url})
	if err != nil {
		return fmt.Errorf("failed to encode %s command: %w", command, err)
	}

	endpoint := c.baseURL + "/" + command
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", command, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", command, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Engine responded",
		zap.String("command", command),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("engine rejected %s: %s: %s", command, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
