package domain

// SnapshotRepository stores an explicit copy of the registry.
// It is only touched when the host asks to save or reload.
type SnapshotRepository interface {
	// Save replaces the stored snapshot with records
	Save(records []DownloadRecord) error

	// Load returns the stored snapshot in insertion order
	Load() ([]DownloadRecord, error)

	// Count returns the number of stored records
	Count() (int64, error)
}
