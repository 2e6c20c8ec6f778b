package infrastructure

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/pkg/logger"
)

const notificationTimeout = 5 * time.Second

// runFunc runs a command to completion
type runFunc func(ctx context.Context, name string, args ...string) error

// NotificationService sends desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	run    runFunc
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, log *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		run:    runCommand,
		logger: logger.OrNop(log),
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	name, args, err := n.command(title, message)
	if err != nil {
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()

	if err := n.run(ctx, name, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

func (n *NotificationService) command(title, message string) (string, []string, error) {
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleQuote(message), appleQuote(title))
		if n.config.Sound {
			script += ` sound name "Glass"`
		}
		return "osascript", []string{"-e", script}, nil
	case "notify-send":
		args := []string{"--app-name=dltrack"}
		if n.config.Sound {
			args = append(args, "--hint=string:sound-name:complete")
		}
		return "notify-send", append(args, title, message), nil
	default:
		return "", nil, fmt.Errorf("unknown notification method %q", n.config.Method)
	}
}

// NotifyDownloadCompleted sends notification when a download finishes
func (n *NotificationService) NotifyDownloadCompleted(name, url string) {
	if name == "" {
		name = url
	}
	_ = n.Send("Download Completed", truncateString(name, 60))
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
