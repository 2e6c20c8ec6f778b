package infrastructure

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dltrack/internal/domain"
)

func newTestNotifier(config *domain.NotificationConfig) (*NotificationService, *[]startCall) {
	var calls []startCall
	n := NewNotificationService(config, nil)
	n.run = func(_ context.Context, name string, args ...string) error {
		calls = append(calls, startCall{name: name, args: args})
		return nil
	}
	return n, &calls
}

func TestNotificationService_Disabled(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: false, Method: "notify-send"})

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotificationService_NotifySend(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"})

	n.NotifyDownloadCompleted("RWKV-4-World-0.1B.pth", "https://example.com/a.pth")

	require.Len(t, *calls, 1)
	assert.Equal(t, "notify-send", (*calls)[0].name)
	assert.Equal(t, []string{"--app-name=dltrack", "Download Completed", "RWKV-4-World-0.1B.pth"}, (*calls)[0].args)
}

func TestNotificationService_OSAScript(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Sound: true, Method: "osascript"})

	require.NoError(t, n.Send("Download Completed", `say "hi"`))

	require.Len(t, *calls, 1)
	assert.Equal(t, "osascript", (*calls)[0].name)
	script := (*calls)[0].args[1]
	assert.Equal(t, `display notification "say \"hi\"" with title "Download Completed" sound name "Glass"`, script)
}

func TestNotificationService_FallsBackToURL(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"})

	n.NotifyDownloadCompleted("", "https://example.com/"+strings.Repeat("x", 80))

	require.Len(t, *calls, 1)
	message := (*calls)[0].args[2]
	assert.True(t, strings.HasSuffix(message, "..."))
	assert.Len(t, message, 63)
}

func TestNotificationService_TruncatesMultiByteName(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"})

	n.NotifyDownloadCompleted("模型"+strings.Repeat("权重", 40)+".pth", "https://example.com/model.pth")

	require.Len(t, *calls, 1)
	message := (*calls)[0].args[2]
	assert.True(t, utf8.ValidString(message))
	assert.True(t, strings.HasSuffix(message, "..."))
	assert.Equal(t, 63, utf8.RuneCountInString(message))
}

func TestNotificationService_UnknownMethod(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "carrier-pigeon"})

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotificationService_CommandFails(t *testing.T) {
	n := NewNotificationService(&domain.NotificationConfig{Enabled: true, Method: "notify-send"}, nil)
	n.run = func(context.Context, string, ...string) error { return errors.New("exit status 1") }

	assert.Error(t, n.Send("title", "message"))
}
