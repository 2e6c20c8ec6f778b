package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// ArtifactWatcher asks the host to refresh its artifact list whenever a new
// finished download with a recognised extension shows up in the registry.
type ArtifactWatcher struct {
	registry   *Registry
	refresher  domain.ArtifactRefresher
	extensions []string
	timeout    time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	sources []domain.ArtifactSource
	cancel  func()
	signals int
	wg      sync.WaitGroup
}

// NewArtifactWatcher creates a watcher; call Start to begin observing
func NewArtifactWatcher(
	registry *Registry,
	refresher domain.ArtifactRefresher,
	config domain.ArtifactsConfig,
	log *zap.Logger,
) *ArtifactWatcher {
	timeout := config.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &ArtifactWatcher{
		registry:   registry,
		refresher:  refresher,
		extensions: config.Extensions,
		sources:    config.Sources,
		timeout:    timeout,
		logger:     logger.OrNop(log),
	}
}

// IsArtifact reports whether a record counts as an artifact once finished
func (w *ArtifactWatcher) IsArtifact(record domain.DownloadRecord) bool {
	return record.HasExtension(w.extensions...)
}

// Count returns the number of finished artifacts currently in the registry
func (w *ArtifactWatcher) Count() int {
	return w.registry.CountCompletedMatching(w.IsArtifact)
}

// Start registers the watcher. Artifacts already present are the baseline
// and do not trigger a refresh.
func (w *ArtifactWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	w.cancel = w.registry.Notifier().Watch(w.Count, w.onCountChanged)
}

// Stop unregisters the watcher and waits for pending refreshes
func (w *ArtifactWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Wait blocks until pending refreshes have returned
func (w *ArtifactWatcher) Wait() {
	w.wg.Wait()
}

// SetSources replaces the source list passed along with each refresh
func (w *ArtifactWatcher) SetSources(sources []domain.ArtifactSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources = append([]domain.ArtifactSource(nil), sources...)
}

// Signals returns how many refreshes were triggered
func (w *ArtifactWatcher) Signals() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signals
}

func (w *ArtifactWatcher) onCountChanged(prev, next int) {
	w.logger.Debug("Finished artifact count changed", zap.Int("previous", prev), zap.Int("current", next))
	if next <= prev {
		return
	}

	w.mu.Lock()
	w.signals++
	sources := append([]domain.ArtifactSource(nil), w.sources...)
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if err := w.refresher.Refresh(ctx, sources); err != nil {
			w.logger.Error("Artifact refresh failed", zap.Int("artifacts", next), zap.Error(err))
			return
		}
		w.logger.Info("Artifact refresh requested",
			zap.Int("artifacts", next),
			zap.Int("sources", len(sources)))
	}()
}
