package app

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// Registry is the single source of truth for all known downloads.
// Records are kept in insertion order and keyed by url.
type Registry struct {
	writeMu  sync.Mutex // serializes mutations and their notifications
	mu       sync.RWMutex
	records  []domain.DownloadRecord
	index    map[string]int
	nextSeq  int64
	notifier *Notifier
	logger   *zap.Logger
}

// NewRegistry creates an empty registry publishing to notifier.
// A nil notifier gets a private one.
func NewRegistry(notifier *Notifier, log *zap.Logger) *Registry {
	log = logger.OrNop(log)
	if notifier == nil {
		notifier = NewNotifier(log)
	}
	return &Registry{
		index:    make(map[string]int),
		nextSeq:  1,
		notifier: notifier,
		logger:   log,
	}
}

// Notifier returns the notifier changes are published to
func (r *Registry) Notifier() *Notifier {
	return r.notifier
}

// ApplyStatus upserts the record for status.URL with full-replace semantics.
// Malformed events and events that would reopen a finished download are
// rejected without touching the registry.
func (r *Registry) ApplyStatus(status domain.DownloadStatus) error {
	if err := status.Validate(); err != nil {
		r.logger.Warn("Rejected status event",
			zap.String("url", status.URL),
			zap.Error(err))
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	change, err := r.upsert(status)
	r.mu.Unlock()
	if err != nil {
		r.logger.Info("Ignored stale status event",
			zap.String("url", status.URL),
			zap.Bool("downloading", status.Downloading),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Status applied",
		zap.String("kind", string(change.Kind)),
		zap.String("url", change.Record.URL),
		zap.String("state", string(change.State)),
		zap.String("transferred", humanize.IBytes(uint64(change.Record.Transferred))),
		zap.String("size", humanize.IBytes(uint64(change.Record.Size))))

	r.notifier.Publish(change)
	return nil
}

// upsert must be called with mu held
func (r *Registry) upsert(status domain.DownloadStatus) (domain.RegistryChange, error) {
	i, ok := r.index[status.URL]
	if !ok {
		record := domain.NewDownloadRecord(status, r.nextSeq)
		r.nextSeq++
		r.index[record.URL] = len(r.records)
		r.records = append(r.records, record)
		return domain.RegistryChange{
			Kind:   domain.ChangeCreated,
			Record: record,
			State:  record.State(),
			Count:  len(r.records),
		}, nil
	}

	record := &r.records[i]
	if record.Done && !status.Done {
		return domain.RegistryChange{}, fmt.Errorf("%w: %s", domain.ErrTerminalRecord, status.URL)
	}

	previous := record.State()
	record.Replace(status)
	return domain.RegistryChange{
		Kind:          domain.ChangeUpdated,
		Record:        *record,
		PreviousState: previous,
		State:         record.State(),
		Count:         len(r.records),
	}, nil
}

// List returns a snapshot of all records in insertion order
func (r *Registry) List() []domain.DownloadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DownloadRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Recent returns a snapshot with the most recently added record first
func (r *Registry) Recent() []domain.DownloadRecord {
	out := r.List()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Get returns the record for url
func (r *Registry) Get(url string) (domain.DownloadRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[url]
	if !ok {
		return domain.DownloadRecord{}, false
	}
	return r.records[i], true
}

// Len returns the number of records
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// CountCompletedMatching counts finished records accepted by pred
func (r *Registry) CountCompletedMatching(pred func(domain.DownloadRecord) bool) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, record := range r.records {
		if record.Done && (pred == nil || pred(record)) {
			count++
		}
	}
	return count
}

// Stats returns record counts per state
func (r *Registry) Stats() domain.DownloadStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.DownloadStats
	for _, record := range r.records {
		stats.Add(record)
	}
	return stats
}

// Remove deletes the record for url. Completion never removes a record;
// this is only called on an explicit request.
func (r *Registry) Remove(url string) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	i, ok := r.index[url]
	if !ok {
		r.mu.Unlock()
		return false
	}
	removed := r.records[i]
	r.records = append(r.records[:i], r.records[i+1:]...)
	r.reindex()
	count := len(r.records)
	r.mu.Unlock()

	r.logger.Info("Download removed", zap.String("url", url))
	r.notifier.Publish(domain.RegistryChange{
		Kind:          domain.ChangeRemoved,
		Record:        removed,
		PreviousState: removed.State(),
		Count:         count,
	})
	return true
}

// Restore replaces the whole registry with records, ordered by Seq.
// Duplicate urls keep their first occurrence.
func (r *Registry) Restore(records []domain.DownloadRecord) int {
	sorted := make([]domain.DownloadRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	r.records = r.records[:0]
	r.index = make(map[string]int, len(sorted))
	r.nextSeq = 1
	for _, stored := range sorted {
		if err := stored.Status().Validate(); err != nil {
			r.logger.Warn("Skipped invalid stored record",
				zap.String("url", stored.URL),
				zap.Error(err))
			continue
		}
		if _, dup := r.index[stored.URL]; dup {
			continue
		}

		record := domain.DownloadRecord{Seq: stored.Seq}
		record.Replace(stored.Status())
		record.Started = record.Started || stored.Started
		if !stored.UpdatedAt.IsZero() {
			record.UpdatedAt = stored.UpdatedAt
		}

		if record.Seq >= r.nextSeq {
			r.nextSeq = record.Seq + 1
		} else {
			record.Seq = r.nextSeq
			r.nextSeq++
		}
		r.index[record.URL] = len(r.records)
		r.records = append(r.records, record)
	}
	count := len(r.records)
	r.mu.Unlock()

	r.logger.Info("Registry restored", zap.Int("records", count))
	r.notifier.Publish(domain.RegistryChange{Kind: domain.ChangeRestored, Count: count})
	return count
}

// reindex must be called with mu held
func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.records))
	for i, record := range r.records {
		r.index[record.URL] = i
	}
}
