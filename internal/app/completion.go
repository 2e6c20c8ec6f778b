package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// CompletionSender is notified once per download that reaches Done
type CompletionSender interface {
	NotifyDownloadCompleted(name, url string)
}

// CompletionObserver forwards finished downloads to a CompletionSender.
// Finishes are queued from a synchronous notifier hook, so none is lost
// while the sender is slow.
type CompletionObserver struct {
	sender CompletionSender
	logger *zap.Logger

	mu      sync.Mutex
	pending []domain.DownloadRecord
	wake    chan struct{}
	cancel  func()
}

// NewCompletionObserver creates a completion observer. It starts queueing
// finishes immediately; Run delivers them.
func NewCompletionObserver(notifier *Notifier, sender CompletionSender, log *zap.Logger) *CompletionObserver {
	o := &CompletionObserver{
		sender: sender,
		logger: logger.OrNop(log),
		wake:   make(chan struct{}, 1),
	}
	o.cancel = notifier.OnChange(o.onChange)
	return o
}

func (o *CompletionObserver) onChange(change domain.RegistryChange) {
	if !change.Finished() {
		return
	}

	o.mu.Lock()
	o.pending = append(o.pending, change.Record)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of finishes not yet delivered
func (o *CompletionObserver) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Run delivers queued finishes until ctx is cancelled, then unregisters
func (o *CompletionObserver) Run(ctx context.Context) error {
	defer o.cancel()

	for {
		for {
			record, ok := o.next()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			o.logger.Info("Download finished",
				zap.String("url", record.URL),
				zap.String("name", record.Name))
			o.sender.NotifyDownloadCompleted(record.Name, record.URL)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-o.wake:
		}
	}
}

func (o *CompletionObserver) next() (domain.DownloadRecord, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		return domain.DownloadRecord{}, false
	}
	record := o.pending[0]
	o.pending = o.pending[1:]
	return record, true
}
