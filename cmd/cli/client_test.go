package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dltrack/api"
	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

type nopEngine struct{}

func (nopEngine) PauseDownload(context.Context, string) error    { return nil }
func (nopEngine) ContinueDownload(context.Context, string) error { return nil }
func (nopEngine) OpenFileFolder(context.Context, string) error   { return nil }

func setupClient(t *testing.T) (*apiClient, *app.Registry) {
	t.Helper()

	registry := app.NewRegistry(nil, nil)
	dispatcher := app.NewDispatcher(registry, nopEngine{}, nopEngine{}, time.Second, nil)
	server := httptest.NewServer(api.SetupRouter(api.Services{Registry: registry, Dispatcher: dispatcher}, logger.NewNopMultiLogger()))
	t.Cleanup(server.Close)
	t.Cleanup(dispatcher.Wait)

	return newAPIClient(server.URL + "/"), registry
}

func testStatus(url string) domain.DownloadStatus {
	return domain.DownloadStatus{
		Name:        "RWKV-4-World-0.1B.pth",
		Path:        "/models/RWKV-4-World-0.1B.pth",
		URL:         url,
		Transferred: 500000,
		Size:        2000000,
		Speed:       1048576,
		Progress:    25,
		Downloading: true,
	}
}

func TestClient_PushListGet(t *testing.T) {
	c, _ := setupClient(t)

	record, err := c.Push(testStatus("https://example.com/a.pth"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateDownloading, record.State())

	_, err = c.Push(testStatus("https://example.com/b.pth"))
	require.NoError(t, err)

	records, err := c.List(true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://example.com/b.pth", records[0].URL)

	got, err := c.Get("https://example.com/a.pth")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), got.Transferred)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Downloading)
}

func TestClient_Errors(t *testing.T) {
	c, _ := setupClient(t)

	_, err := c.Get("https://example.com/missing")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, domain.ErrNotFound.Error(), apiErr.Message)

	_, err = c.Push(domain.DownloadStatus{URL: "https://example.com/a.pth", Size: -1})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	_, err = c.SaveSnapshot()
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)
}

func TestClient_CommandsAndRemove(t *testing.T) {
	c, registry := setupClient(t)
	_, err := c.Push(testStatus("https://example.com/a.pth"))
	require.NoError(t, err)

	result, err := c.Command(domain.ActionPause, "https://example.com/a.pth", "")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDispatched, result.Outcome)

	result, err = c.Command(domain.ActionLocate, "", "/tmp/x.bin")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.bin", result.Path)

	require.NoError(t, c.Remove("https://example.com/a.pth"))
	assert.Equal(t, 0, registry.Len())
}

func TestClient_Watch(t *testing.T) {
	c, registry := setupClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.RegistryChange, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Watch(ctx, func(change domain.RegistryChange) { changes <- change })
	}()

	require.Eventually(t, func() bool {
		return registry.Notifier().Subscribers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, registry.ApplyStatus(testStatus("https://example.com/a.pth")))

	select {
	case change := <-changes:
		assert.Equal(t, domain.ChangeCreated, change.Kind)
		assert.Equal(t, "https://example.com/a.pth", change.Record.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	record := domain.NewDownloadRecord(testStatus("https://example.com/a.pth"), 1)

	printRecords(&buf, []domain.DownloadRecord{record})

	out := buf.String()
	assert.Contains(t, out, "RWKV-4-World-0.1B.pth")
	assert.Contains(t, out, "downloading")
	assert.Contains(t, out, "25.00%")
	assert.Contains(t, out, "0.48MB/1.91MB")
	assert.Contains(t, out, "1.00MB/s")
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		result   domain.CommandResult
		expected string
	}{
		{domain.CommandResult{Action: domain.ActionPause, URL: "u", Outcome: domain.OutcomeDispatched}, "pause sent for u\n"},
		{domain.CommandResult{Action: domain.ActionContinue, URL: "u", Outcome: domain.OutcomeUnknownURL}, "continue ignored: no download for u\n"},
		{domain.CommandResult{Action: domain.ActionLocate, URL: "u", Outcome: domain.OutcomeNothingToLocate}, "locate ignored: u has no output path yet\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		printResult(&buf, tt.result)
		assert.Equal(t, tt.expected, buf.String())
	}
}

func TestPrintChange(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	printChange(&buf, now, domain.RegistryChange{Kind: domain.ChangeRestored, Count: 2})
	assert.Equal(t, "15:04:05 restored 2 downloads\n", buf.String())

	buf.Reset()
	record := domain.NewDownloadRecord(testStatus("https://example.com/a.pth"), 1)
	printChange(&buf, now, domain.RegistryChange{
		Kind:          domain.ChangeUpdated,
		Record:        record,
		PreviousState: domain.StatePaused,
		State:         domain.StateDownloading,
	})
	assert.Contains(t, buf.String(), "paused -> downloading")
	assert.Contains(t, buf.String(), "25.00% - 0.48MB/1.91MB - 1.00MB/s - https://example.com/a.pth")
}

func TestTruncate_MultiByte(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "模型权重...", truncate("模型权重文件.pth", 7))
}
