package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/dltrack/internal/domain"
)

const snapshotBatchSize = 100

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite.
// A snapshot is the complete registry; saving replaces the previous one.
type SQLiteSnapshotRepository struct {
	db *gorm.DB
}

// NewSQLiteSnapshotRepository opens or creates the snapshot database
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteSnapshotRepository{db: db}, nil
}

// Save replaces the stored snapshot with records
func (r *SQLiteSnapshotRepository) Save(records []domain.DownloadRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.DownloadRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]domain.DownloadRecord, len(records))
		copy(rows, records)
		if err := tx.CreateInBatches(&rows, snapshotBatchSize).Error; err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		return nil
	})
}

// Load returns the stored snapshot in insertion order
func (r *SQLiteSnapshotRepository) Load() ([]domain.DownloadRecord, error) {
	var records []domain.DownloadRecord
	if err := r.db.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records
func (r *SQLiteSnapshotRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.DownloadRecord{}).Count(&count).Error
	return count, err
}

// Close closes the database connection
func (r *SQLiteSnapshotRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
