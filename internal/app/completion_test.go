package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	names []string
}

func (s *recordingSender) NotifyDownloadCompleted(name, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
}

func (s *recordingSender) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

func TestCompletionObserver_NotifiesOncePerFinish(t *testing.T) {
	registry := NewRegistry(nil, nil)
	sender := &recordingSender{}
	observer := NewCompletionObserver(registry.Notifier(), sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- observer.Run(ctx) }()

	require.NoError(t, registry.ApplyStatus(status("a")))
	require.NoError(t, registry.ApplyStatus(status("a", finished)))
	require.NoError(t, registry.ApplyStatus(status("a", finished)))

	require.Eventually(t, func() bool { return len(sender.Names()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"RWKV-4-World-0.1B.pth"}, sender.Names())
	assert.Equal(t, 0, registry.Notifier().Hooks())
}

type gatedSender struct {
	recordingSender
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedSender) NotifyDownloadCompleted(name, url string) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	s.recordingSender.NotifyDownloadCompleted(url, url)
}

func TestCompletionObserver_SlowSenderKeepsEveryFinish(t *testing.T) {
	registry := NewRegistry(nil, nil)
	sender := &gatedSender{entered: make(chan struct{}), release: make(chan struct{})}
	observer := NewCompletionObserver(registry.Notifier(), sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- observer.Run(ctx) }()

	require.NoError(t, registry.ApplyStatus(status("a", finished)))
	<-sender.entered

	require.NoError(t, registry.ApplyStatus(status("b", finished)))
	for i := 0; i < 20; i++ {
		require.NoError(t, registry.ApplyStatus(status(fmt.Sprintf("c%d", i))))
	}
	assert.Equal(t, 1, observer.Pending())

	close(sender.release)
	require.Eventually(t, func() bool { return len(sender.Names()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, sender.Names())

	cancel()
	require.NoError(t, <-done)
}

func TestCompletionObserver_QueuesFinishesBeforeRun(t *testing.T) {
	registry := NewRegistry(nil, nil)
	sender := &recordingSender{}
	observer := NewCompletionObserver(registry.Notifier(), sender, nil)

	require.NoError(t, registry.ApplyStatus(status("a", finished)))
	require.Equal(t, 1, observer.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- observer.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sender.Names()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
