package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dltrack/internal/domain"
)

func setupSnapshotRepo(t *testing.T) (*SQLiteSnapshotRepository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "snapshot.db")
	repo, err := NewSQLiteSnapshotRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, dbPath
}

func snapshotRecord(url string, seq int64, mutate func(*domain.DownloadStatus)) domain.DownloadRecord {
	status := domain.DownloadStatus{
		Name:        filepath.Base(url),
		Path:        "/models/" + filepath.Base(url),
		URL:         url,
		Transferred: 100,
		Size:        1000,
		Speed:       10,
		Progress:    10,
		Downloading: true,
	}
	if mutate != nil {
		mutate(&status)
	}
	return domain.NewDownloadRecord(status, seq)
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	repo, _ := setupSnapshotRepo(t)

	records := []domain.DownloadRecord{
		snapshotRecord("https://example.com/b.pth", 2, func(s *domain.DownloadStatus) { s.Done = true }),
		snapshotRecord("https://example.com/a.pth", 1, nil),
		snapshotRecord("https://example.com/c.bin", 3, func(s *domain.DownloadStatus) { s.Downloading = false }),
	}
	require.NoError(t, repo.Save(records))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, "https://example.com/a.pth", loaded[0].URL)
	assert.Equal(t, "https://example.com/b.pth", loaded[1].URL)
	assert.Equal(t, "https://example.com/c.bin", loaded[2].URL)

	assert.Equal(t, domain.StateDownloading, loaded[0].State())
	assert.Equal(t, domain.StateDone, loaded[1].State())
	assert.Equal(t, int64(1000), loaded[1].Transferred)
	assert.Equal(t, domain.StatePending, loaded[2].State())
	assert.Equal(t, records[1].Status(), loaded[0].Status())
}

func TestSnapshotRepository_SaveReplaces(t *testing.T) {
	repo, _ := setupSnapshotRepo(t)

	require.NoError(t, repo.Save([]domain.DownloadRecord{
		snapshotRecord("https://example.com/a.pth", 1, nil),
		snapshotRecord("https://example.com/b.pth", 2, nil),
	}))
	require.NoError(t, repo.Save([]domain.DownloadRecord{
		snapshotRecord("https://example.com/c.pth", 1, nil),
	}))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Save(nil))
	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSnapshotRepository_Reopen(t *testing.T) {
	repo, dbPath := setupSnapshotRepo(t)
	require.NoError(t, repo.Save([]domain.DownloadRecord{snapshotRecord("https://example.com/a.pth", 7, nil)}))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteSnapshotRepository(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(7), loaded[0].Seq)
	assert.True(t, loaded[0].Started)
}
