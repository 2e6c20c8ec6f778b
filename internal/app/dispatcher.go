package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

const defaultCommandTimeout = 10 * time.Second

// RecordLookup is the read side of the registry the dispatcher needs
type RecordLookup interface {
	Get(url string) (domain.DownloadRecord, bool)
}

// Dispatcher turns user intents into engine and filesystem commands.
// It checks preconditions against the registry but never mutates it:
// state only changes when the engine reports back with a status event.
type Dispatcher struct {
	records RecordLookup
	engine  domain.TransferEngine
	locator domain.FileLocator
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	records RecordLookup,
	engine domain.TransferEngine,
	locator domain.FileLocator,
	timeout time.Duration,
	log *zap.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &Dispatcher{
		records: records,
		engine:  engine,
		locator: locator,
		timeout: timeout,
		logger:  logger.OrNop(log),
	}
}

// Pause asks the engine to pause url. Only a downloading record is paused.
func (d *Dispatcher) Pause(url string) domain.CommandResult {
	result := d.check(domain.ActionPause, url, domain.DownloadRecord.CanPause)
	if result.Dispatched() {
		d.send(result, func(ctx context.Context) error {
			return d.engine.PauseDownload(ctx, url)
		})
	}
	return result
}

// Continue asks the engine to resume url. Only a record that is neither
// downloading nor done is continued.
func (d *Dispatcher) Continue(url string) domain.CommandResult {
	result := d.check(domain.ActionContinue, url, domain.DownloadRecord.CanContinue)
	if result.Dispatched() {
		d.send(result, func(ctx context.Context) error {
			return d.engine.ContinueDownload(ctx, url)
		})
	}
	return result
}

// Locate reveals path in the file manager. An empty path is reported as
// a no-op; in-progress downloads may be located.
func (d *Dispatcher) Locate(path string) domain.CommandResult {
	result := domain.CommandResult{Action: domain.ActionLocate, Path: path, Outcome: domain.OutcomeDispatched}
	if path == "" {
		result.Outcome = domain.OutcomeNothingToLocate
		d.logger.Info("Nothing to locate", zap.String("action", string(result.Action)))
		return result
	}

	d.send(result, func(ctx context.Context) error {
		return d.locator.OpenFileFolder(ctx, path)
	})
	return result
}

// LocateURL reveals the path of the record for url
func (d *Dispatcher) LocateURL(url string) domain.CommandResult {
	record, ok := d.records.Get(url)
	if !ok {
		d.logger.Info("Locate ignored for unknown download", zap.String("url", url))
		return domain.CommandResult{Action: domain.ActionLocate, URL: url, Outcome: domain.OutcomeUnknownURL}
	}

	result := d.Locate(record.Path)
	result.URL = url
	return result
}

// Wait blocks until every in-flight command has returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) check(action domain.Action, url string, allowed func(domain.DownloadRecord) bool) domain.CommandResult {
	result := domain.CommandResult{Action: action, URL: url, Outcome: domain.OutcomeDispatched}

	record, ok := d.records.Get(url)
	switch {
	case !ok:
		result.Outcome = domain.OutcomeUnknownURL
		d.logger.Info("Command ignored for unknown download",
			zap.String("action", string(action)),
			zap.String("url", url))
	case !allowed(record):
		result.Outcome = domain.OutcomeInvalidState
		d.logger.Info("Command ignored in current state",
			zap.String("action", string(action)),
			zap.String("url", url),
			zap.String("state", string(record.State())))
	}
	return result
}

// send runs cmd in the background; failures are only logged
func (d *Dispatcher) send(result domain.CommandResult, cmd func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		if err := cmd(ctx); err != nil {
			d.logger.Error("Command failed",
				zap.String("action", string(result.Action)),
				zap.String("url", result.URL),
				zap.String("path", result.Path),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err))
			return
		}

		d.logger.Info("Command sent",
			zap.String("action", string(result.Action)),
			zap.String("url", result.URL),
			zap.String("path", result.Path),
			zap.Duration("latency", time.Since(start)))
	}()
}
