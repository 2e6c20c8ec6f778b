package app

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

// SnapshotService saves and reloads the registry on explicit request.
// Nothing is persisted implicitly.
type SnapshotService struct {
	mu       sync.Mutex
	registry *Registry
	repo     domain.SnapshotRepository
	logger   *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(registry *Registry, repo domain.SnapshotRepository, log *zap.Logger) *SnapshotService {
	return &SnapshotService{
		registry: registry,
		repo:     repo,
		logger:   logger.OrNop(log),
	}
}

// Save writes the current registry content, replacing the previous snapshot
func (s *SnapshotService) Save() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.registry.List()
	if err := s.repo.Save(records); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Info("Snapshot saved", zap.Int("records", len(records)))
	return len(records), nil
}

// Restore replaces the registry content with the stored snapshot
func (s *SnapshotService) Restore() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load snapshot: %w", err)
	}
	count := s.registry.Restore(records)
	s.logger.Info("Snapshot restored", zap.Int("records", count))
	return count, nil
}

// Stored returns the number of records in the stored snapshot
func (s *SnapshotService) Stored() (int64, error) {
	return s.repo.Count()
}
