package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/dltrack/internal/domain"
)

// apiClient talks to a running dltrack server
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is a non-2xx answer from the server
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &msg) != nil || msg.Error == "" {
			msg.Error = strings.TrimSpace(string(data))
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg.Error}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) List(recent bool) ([]domain.DownloadRecord, error) {
	path := "/api/v1/downloads"
	if recent {
		path += "?order=recent"
	}
	var records []domain.DownloadRecord
	err := c.do(http.MethodGet, path, nil, &records)
	return records, err
}

func (c *apiClient) Get(downloadURL string) (domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	err := c.do(http.MethodGet, "/api/v1/downloads/lookup?url="+url.QueryEscape(downloadURL), nil, &record)
	return record, err
}

func (c *apiClient) Stats() (domain.DownloadStats, error) {
	var stats domain.DownloadStats
	err := c.do(http.MethodGet, "/api/v1/downloads/stats", nil, &stats)
	return stats, err
}

func (c *apiClient) Remove(downloadURL string) error {
	return c.do(http.MethodDelete, "/api/v1/downloads?url="+url.QueryEscape(downloadURL), nil, nil)
}

func (c *apiClient) Command(action domain.Action, downloadURL, path string) (domain.CommandResult, error) {
	body := map[string]string{}
	if downloadURL != "" {
		body["url"] = downloadURL
	}
	if path != "" {
		body["path"] = path
	}
	var result domain.CommandResult
	err := c.do(http.MethodPost, "/api/v1/downloads/"+string(action), body, &result)
	return result, err
}

func (c *apiClient) Push(status domain.DownloadStatus) (domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	err := c.do(http.MethodPost, "/api/v1/status", status, &record)
	return record, err
}

func (c *apiClient) SaveSnapshot() (int, error) {
	var resp struct {
		Saved int `json:"saved"`
	}
	err := c.do(http.MethodPost, "/api/v1/snapshot", nil, &resp)
	return resp.Saved, err
}

func (c *apiClient) RestoreSnapshot() (int, error) {
	var resp struct {
		Restored int `json:"restored"`
	}
	err := c.do(http.MethodPost, "/api/v1/snapshot/restore", nil, &resp)
	return resp.Restored, err
}

func (c *apiClient) Healthy() bool {
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Watch streams registry changes to fn until ctx is done or the server
// closes the stream
func (c *apiClient) Watch(ctx context.Context, fn func(domain.RegistryChange)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/events"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var change domain.RegistryChange
		if err := conn.ReadJSON(&change); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(change)
	}
}
