package app

import (
	"context"
	"errors"
	"sync"

	"github.com/yourusername/dltrack/internal/domain"
)

type engineCall struct {
	Action domain.Action
	URL    string
}

// fakeEngine implements domain.TransferEngine and domain.FileLocator for testing
type fakeEngine struct {
	mu      sync.Mutex
	calls   []engineCall
	located []string
	fail    bool
}

func (f *fakeEngine) PauseDownload(ctx context.Context, url string) error {
	return f.record(domain.ActionPause, url)
}

func (f *fakeEngine) ContinueDownload(ctx context.Context, url string) error {
	return f.record(domain.ActionContinue, url)
}

func (f *fakeEngine) OpenFileFolder(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.located = append(f.located, path)
	return nil
}

func (f *fakeEngine) record(action domain.Action, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, engineCall{Action: action, URL: url})
	if f.fail {
		return errors.New("engine unavailable")
	}
	return nil
}

func (f *fakeEngine) Calls() []engineCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engineCall(nil), f.calls...)
}

func (f *fakeEngine) Located() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.located...)
}

// fakeRefresher implements domain.ArtifactRefresher for testing
type fakeRefresher struct {
	mu      sync.Mutex
	calls   [][]domain.ArtifactSource
	failErr error
}

func (f *fakeRefresher) Refresh(ctx context.Context, sources []domain.ArtifactSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sources)
	return f.failErr
}

func (f *fakeRefresher) Calls() [][]domain.ArtifactSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]domain.ArtifactSource(nil), f.calls...)
}

func status(url string, mutate ...func(*domain.DownloadStatus)) domain.DownloadStatus {
	s := domain.DownloadStatus{
		Name:        "RWKV-4-World-0.1B.pth",
		Path:        "/models/RWKV-4-World-0.1B.pth",
		URL:         url,
		Transferred: 1000,
		Size:        10000,
		Speed:       512,
		Progress:    10,
		Downloading: true,
	}
	for _, m := range mutate {
		m(&s)
	}
	return s
}

func paused(s *domain.DownloadStatus) {
	s.Downloading = false
	s.Speed = 0
}

func finished(s *domain.DownloadStatus) {
	s.Downloading = false
	s.Done = true
	s.Progress = 100
	s.Transferred = s.Size
}

func pending(s *domain.DownloadStatus) {
	s.Downloading = false
	s.Transferred = 0
	s.Progress = 0
	s.Speed = 0
}
