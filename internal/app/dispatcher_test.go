package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dltrack/internal/domain"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *Registry, *fakeEngine) {
	t.Helper()
	registry := NewRegistry(nil, nil)
	engine := &fakeEngine{}
	return NewDispatcher(registry, engine, engine, time.Second, nil), registry, engine
}

func TestDispatcher_PauseDownloading(t *testing.T) {
	d, registry, engine := newTestDispatcher(t)
	require.NoError(t, registry.ApplyStatus(status("a")))

	result := d.Pause("a")
	d.Wait()

	assert.Equal(t, domain.OutcomeDispatched, result.Outcome)
	assert.Equal(t, []engineCall{{Action: domain.ActionPause, URL: "a"}}, engine.Calls())

	record, _ := registry.Get("a")
	assert.True(t, record.Downloading, "dispatching does not change registry state")
}

func TestDispatcher_PauseNoops(t *testing.T) {
	d, registry, engine := newTestDispatcher(t)
	require.NoError(t, registry.ApplyStatus(status("paused")))
	require.NoError(t, registry.ApplyStatus(status("paused", paused)))
	require.NoError(t, registry.ApplyStatus(status("pending", pending)))
	require.NoError(t, registry.ApplyStatus(status("done", finished)))

	assert.Equal(t, domain.OutcomeInvalidState, d.Pause("paused").Outcome)
	assert.Equal(t, domain.OutcomeInvalidState, d.Pause("pending").Outcome)
	assert.Equal(t, domain.OutcomeInvalidState, d.Pause("done").Outcome)
	assert.Equal(t, domain.OutcomeUnknownURL, d.Pause("missing").Outcome)
	d.Wait()

	assert.Empty(t, engine.Calls())
}

func TestDispatcher_Continue(t *testing.T) {
	d, registry, engine := newTestDispatcher(t)
	require.NoError(t, registry.ApplyStatus(status("paused")))
	require.NoError(t, registry.ApplyStatus(status("paused", paused)))
	require.NoError(t, registry.ApplyStatus(status("pending", pending)))
	require.NoError(t, registry.ApplyStatus(status("active")))
	require.NoError(t, registry.ApplyStatus(status("done", finished)))

	assert.Equal(t, domain.OutcomeDispatched, d.Continue("paused").Outcome)
	assert.Equal(t, domain.OutcomeDispatched, d.Continue("pending").Outcome)
	assert.Equal(t, domain.OutcomeInvalidState, d.Continue("active").Outcome)
	assert.Equal(t, domain.OutcomeInvalidState, d.Continue("done").Outcome)
	assert.Equal(t, domain.OutcomeUnknownURL, d.Continue("missing").Outcome)
	d.Wait()

	assert.ElementsMatch(t, []engineCall{
		{Action: domain.ActionContinue, URL: "paused"},
		{Action: domain.ActionContinue, URL: "pending"},
	}, engine.Calls())
}

func TestDispatcher_EngineFailureIsNotSurfaced(t *testing.T) {
	d, registry, engine := newTestDispatcher(t)
	engine.fail = true
	require.NoError(t, registry.ApplyStatus(status("a")))

	result := d.Pause("a")
	d.Wait()

	assert.Equal(t, domain.OutcomeDispatched, result.Outcome)
	assert.Len(t, engine.Calls(), 1)
}

func TestDispatcher_Locate(t *testing.T) {
	d, registry, engine := newTestDispatcher(t)
	require.NoError(t, registry.ApplyStatus(status("a")))
	require.NoError(t, registry.ApplyStatus(status("nopath", func(s *domain.DownloadStatus) { s.Path = "" })))

	assert.Equal(t, domain.OutcomeDispatched, d.Locate("/models/x.pth").Outcome)
	assert.Equal(t, domain.OutcomeNothingToLocate, d.Locate("").Outcome)

	byURL := d.LocateURL("a")
	assert.Equal(t, domain.OutcomeDispatched, byURL.Outcome)
	assert.Equal(t, "a", byURL.URL)
	assert.Equal(t, "/models/RWKV-4-World-0.1B.pth", byURL.Path)

	assert.Equal(t, domain.OutcomeNothingToLocate, d.LocateURL("nopath").Outcome)
	assert.Equal(t, domain.OutcomeUnknownURL, d.LocateURL("missing").Outcome)
	d.Wait()

	assert.ElementsMatch(t, []string{"/models/x.pth", "/models/RWKV-4-World-0.1B.pth"}, engine.Located())
	assert.Empty(t, engine.Calls(), "locate never talks to the transfer engine")
	assert.Equal(t, 2, registry.Len())
}
